// Package plan models the step list a planner hands to the pipeline.
// Step kinds form a closed enum mapped to stages through a switch in
// the runtime; unrecognized or empty plans fall back to the default
// four-stage sequence. There is deliberately no reflection-based stage
// instantiation.
package plan

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// StepKind identifies one of the known stage kinds.
type StepKind string

const (
	StepSearch   StepKind = "search"
	StepDecide   StepKind = "decide"
	StepExplain  StepKind = "explain"
	StepFinalize StepKind = "finalize"
)

// DefaultMaxSteps bounds how long a supplied plan may get.
const DefaultMaxSteps = 8

// Step is a single planned stage invocation.
type Step struct {
	Kind   StepKind       `json:"kind" yaml:"kind" mapstructure:"kind"`
	Tool   string         `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Plan is an ordered list of steps ending in a finalize step.
type Plan struct {
	Steps     []Step `json:"steps" yaml:"steps" mapstructure:"steps"`
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty" mapstructure:"rationale"`
}

// Default returns the standard sequence: search, decide, explain,
// finalize.
func Default() Plan {
	return Plan{Steps: []Step{
		{Kind: StepSearch},
		{Kind: StepDecide},
		{Kind: StepExplain},
		{Kind: StepFinalize},
	}}
}

// Decode builds a Plan from loosely-typed data, e.g. a JSON object a
// planner produced. Unknown fields are ignored.
func Decode(raw any) (Plan, error) {
	var p Plan
	if err := mapstructure.Decode(raw, &p); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	return p, nil
}

// aliases maps legacy planner vocabulary onto the closed enum.
var aliases = map[StepKind]StepKind{
	"tool":     StepSearch,
	"retrieve": StepSearch,
	"score":    StepDecide,
}

// known reports whether k names a stage the runtime can build.
func known(k StepKind) bool {
	switch k {
	case StepSearch, StepDecide, StepExplain, StepFinalize:
		return true
	}
	return false
}

// Normalize trims the plan to maxSteps, resolves aliases, drops
// unrecognized kinds and guarantees a trailing finalize step. An empty
// result falls back to Default.
func (p Plan) Normalize(maxSteps int) Plan {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	steps := make([]Step, 0, len(p.Steps))
	for _, s := range p.Steps {
		if alias, ok := aliases[s.Kind]; ok {
			s.Kind = alias
		}
		if !known(s.Kind) {
			continue
		}
		if s.Kind == StepFinalize {
			// Finalize only ever appears once, at the end.
			continue
		}
		steps = append(steps, s)
		if len(steps) == maxSteps-1 {
			break
		}
	}
	if len(steps) == 0 {
		return Default()
	}
	steps = append(steps, Step{Kind: StepFinalize})
	return Plan{Steps: steps, Rationale: p.Rationale}
}
