package runtime

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
)

// FinalizeStage marks the run complete. It costs nothing so a run that
// reached the end of its budget elsewhere still cannot be starved of
// its terminal step by the finalize itself.
//
// Reads: FactOffers, FactScoring, FactExplanation. Writes: State.Output.
type FinalizeStage struct{}

func NewFinalizeStage() *FinalizeStage { return &FinalizeStage{} }

func (f *FinalizeStage) Name() string { return "finalize" }
func (f *FinalizeStage) Cost() int    { return FinalizeCost }

func (f *FinalizeStage) Run(ctx context.Context, state *domain.State, rc domain.RunContext) error {
	offers := state.Offers()
	if offers == nil {
		offers = []domain.Offer{}
	}
	output := map[string]any{"offers": offers}
	if sc, ok := state.Scoring(); ok {
		output["scoring"] = sc
	}
	if ex, ok := state.Explanation(); ok {
		output["explanation"] = ex
	}
	state.MarkDone(output)
	return nil
}
