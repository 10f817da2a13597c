package runtime

import (
	"github.com/aretw0/forager/pkg/decision"
	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/plan"
	"github.com/aretw0/forager/pkg/ports"
	"github.com/aretw0/forager/pkg/registry"
)

// StageDeps carries everything a plan-built stage list needs.
type StageDeps struct {
	Tools       *registry.Registry
	Decision    *decision.Engine
	Criteria    []domain.Criterion
	SearchTool  string
	SummaryTool string
}

// BuildStages maps a normalized plan onto concrete stages. Step params
// may override the tool a search step hits; everything else is fixed by
// the deps. Unknown kinds are already gone after plan.Normalize, but an
// unmapped kind here falls through silently rather than panicking.
func BuildStages(p plan.Plan, deps StageDeps) []ports.Stage {
	stages := make([]ports.Stage, 0, len(p.Steps))
	for _, step := range p.Steps {
		switch step.Kind {
		case plan.StepSearch:
			tool := deps.SearchTool
			if step.Tool != "" {
				tool = step.Tool
			}
			stages = append(stages, NewSearchStage(deps.Tools, tool))
		case plan.StepDecide:
			stages = append(stages, NewDecideStage(deps.Decision, deps.Criteria))
		case plan.StepExplain:
			stages = append(stages, NewExplainStage(deps.Tools, deps.SummaryTool))
		case plan.StepFinalize:
			stages = append(stages, NewFinalizeStage())
		}
	}
	return stages
}
