package ports

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// SearchProvider is the data-source adapter contract: given a query it
// returns normalized offers. Implementations may fail with any error;
// the tool invoker wrapping the provider converts failures into
// ToolResult envelopes, so providers should not build their own retry
// logic.
type SearchProvider interface {
	Search(ctx context.Context, query string, topK int, prefs map[string]any) ([]domain.Offer, error)
}

// SearchFunc adapts a plain function to SearchProvider.
type SearchFunc func(ctx context.Context, query string, topK int, prefs map[string]any) ([]domain.Offer, error)

// Search implements SearchProvider.
func (f SearchFunc) Search(ctx context.Context, query string, topK int, prefs map[string]any) ([]domain.Offer, error) {
	return f(ctx, query, topK, prefs)
}
