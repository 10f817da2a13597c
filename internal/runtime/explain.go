package runtime

import (
	"context"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/registry"
)

// ExplainStage optionally rephrases the templated explanation summary
// through a summarizer tool (usually LLM-backed). The templated summary
// from the decision engine is always a valid fallback, so a missing or
// failing summarizer never hurts the run.
//
// Reads: FactExplanation. Writes: FactExplanation (summary only).
type ExplainStage struct {
	tools *registry.Registry
	tool  string
	cost  int
}

// NewExplainStage wires the stage to a summarizer tool name; an empty
// name disables rephrasing entirely.
func NewExplainStage(tools *registry.Registry, tool string) *ExplainStage {
	return &ExplainStage{tools: tools, tool: tool, cost: ExplainCost}
}

func (e *ExplainStage) Name() string { return "explain" }

// Cost is zero when no summarizer tool is wired: a guaranteed no-op
// must not consume budget.
func (e *ExplainStage) Cost() int {
	if e.tool == "" {
		return 0
	}
	return e.cost
}

func (e *ExplainStage) Run(ctx context.Context, state *domain.State, rc domain.RunContext) error {
	if e.tool == "" || !e.tools.Has(e.tool) {
		return nil
	}
	expl, ok := state.Explanation()
	if !ok || expl.Winner == "" {
		return nil
	}

	res, err := e.tools.Call(ctx, e.tool, map[string]any{
		"query":   state.Query,
		"summary": expl.Summary,
		"winner":  expl.Winner,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return nil
	}
	if s, ok := res.Data.(string); ok && s != "" {
		expl.Summary = s
		state.SetExplanation(expl)
	}
	return nil
}
