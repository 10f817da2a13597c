package ports

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// Stage is one ordered transform over the shared execution state. A
// stage reads facts written by earlier stages, calls at most one tool,
// and writes its own fact keys.
//
// Contract: a stage must either complete its writes or return an error
// having written nothing; the runtime wrapper restores the fact map on
// failure, so partial writes would be lost anyway. Stages are stateless
// and safe for concurrent use across requests.
type Stage interface {
	// Name identifies the stage in logs and metrics.
	Name() string

	// Cost is the fixed budget debit per invocation; zero is free.
	Cost() int

	// Run applies the transform, mutating state in place.
	Run(ctx context.Context, state *domain.State, rc domain.RunContext) error
}
