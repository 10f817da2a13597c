package ports

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// Summarizer is the optional LLM collaborator. Given the structured
// explanation it may return a friendlier phrasing of the summary text.
// The engine functions identically without one: only the summary field
// changes, never the underlying scoring or explanation facts.
type Summarizer interface {
	Summarize(ctx context.Context, query string, expl domain.Explanation) (string, error)
}
