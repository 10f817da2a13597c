package catalog

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// ToolFunc exposes the catalog as a registry tool. The payload carries
// the parsed search intent: terms, sites, max_price and top_k.
func (c *Catalog) ToolFunc() domain.ToolFunc {
	return func(_ context.Context, payload map[string]any) (any, error) {
		q := Query{
			Terms: stringSlice(payload["terms"]),
			Sites: stringSlice(payload["sites"]),
		}
		if v, ok := floatValue(payload["max_price"]); ok {
			q.MaxPrice = &v
		}
		if v, ok := floatValue(payload["top_k"]); ok && v > 0 {
			q.Limit = int(v)
		}
		return c.Search(q), nil
	}
}

// stringSlice tolerates both native []string payloads and []any from a
// JSON round trip.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
