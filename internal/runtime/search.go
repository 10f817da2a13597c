package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/query"
	"github.com/aretw0/forager/pkg/registry"
)

// Default spend costs per built-in stage, in budget units.
const (
	SearchCost   = 3
	DecideCost   = 2
	ExplainCost  = 2
	FinalizeCost = 0
)

// DefaultTopK bounds how many offers the search stage keeps when the
// request does not say.
const DefaultTopK = 10

// SearchStage parses intent from the raw query, calls the offer-fetch
// tool through the registry and stores the (filtered, capped) offers.
// A failed tool call degrades to an empty offer list rather than
// aborting the run.
//
// Reads: State.Query. Writes: FactIntent, FactOffers.
type SearchStage struct {
	tools *registry.Registry
	tool  string
	cost  int
}

// NewSearchStage wires the stage to a registered tool name, typically
// "fetch_offers".
func NewSearchStage(tools *registry.Registry, tool string) *SearchStage {
	return &SearchStage{tools: tools, tool: tool, cost: SearchCost}
}

func (s *SearchStage) Name() string { return "search" }
func (s *SearchStage) Cost() int    { return s.cost }

func (s *SearchStage) Run(ctx context.Context, state *domain.State, rc domain.RunContext) error {
	intent := query.Parse(state.Query)
	state.Facts[domain.FactIntent] = intent

	topK := rc.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	payload := map[string]any{
		"query": state.Query,
		"terms": intent.Terms,
		"top_k": topK,
	}
	if intent.MaxPrice != nil {
		payload["max_price"] = *intent.MaxPrice
	}
	if len(intent.Sites) > 0 {
		payload["sites"] = intent.Sites
	}
	for k, v := range rc.Prefs {
		payload[k] = v
	}

	res, err := s.tools.Call(ctx, s.tool, payload)
	if err != nil {
		return err
	}
	if !res.Success {
		// Degraded mode: no offers, but the run continues and the
		// envelope reports no_offers instead of an error.
		state.SetOffers([]domain.Offer{})
		return nil
	}

	offers, ok := res.Data.([]domain.Offer)
	if !ok {
		return fmt.Errorf("tool %s returned %T, want []domain.Offer", s.tool, res.Data)
	}

	kept := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if intent.MaxPrice != nil && o.Price > *intent.MaxPrice {
			continue
		}
		kept = append(kept, o)
		if len(kept) == topK {
			break
		}
	}
	state.SetOffers(kept)
	return nil
}
