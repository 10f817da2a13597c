package runtime

import (
	"context"

	"github.com/aretw0/forager/pkg/decision"
	"github.com/aretw0/forager/pkg/domain"
)

// DecideStage scores the gathered offers with the decision engine and
// stores both the scoring and its explanation. Invariant violations
// from the engine propagate; they indicate a scoring bug, not bad
// input.
//
// Reads: FactOffers. Writes: FactScoring, FactExplanation.
type DecideStage struct {
	engine   *decision.Engine
	defaults []domain.Criterion
	cost     int
}

func NewDecideStage(engine *decision.Engine, defaults []domain.Criterion) *DecideStage {
	if engine == nil {
		engine = decision.NewEngine()
	}
	if defaults == nil {
		defaults = domain.DefaultCriteria()
	}
	return &DecideStage{engine: engine, defaults: defaults, cost: DecideCost}
}

func (d *DecideStage) Name() string { return "decide" }
func (d *DecideStage) Cost() int    { return d.cost }

func (d *DecideStage) Run(ctx context.Context, state *domain.State, rc domain.RunContext) error {
	criteria := rc.Criteria
	if len(criteria) == 0 {
		criteria = d.defaults
	}

	scoring, expl, err := d.engine.Evaluate(state.Offers(), criteria)
	if err != nil {
		return err
	}
	state.SetScoring(scoring)
	state.SetExplanation(expl)
	return nil
}
