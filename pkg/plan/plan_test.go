package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(p Plan) []StepKind {
	out := make([]StepKind, 0, len(p.Steps))
	for _, s := range p.Steps {
		out = append(out, s.Kind)
	}
	return out
}

func TestDecode_FromPlannerJSON(t *testing.T) {
	raw := map[string]any{
		"steps": []any{
			map[string]any{"kind": "search", "tool": "fetch_offers", "params": map[string]any{"top_k": 5}},
			map[string]any{"kind": "decide"},
			map[string]any{"kind": "finalize"},
		},
		"rationale": "simple comparison",
	}

	p, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, StepSearch, p.Steps[0].Kind)
	assert.Equal(t, "fetch_offers", p.Steps[0].Tool)
	assert.Equal(t, "simple comparison", p.Rationale)
}

func TestNormalize_EmptyFallsBack(t *testing.T) {
	p := Plan{}.Normalize(0)
	assert.Equal(t, kinds(Default()), kinds(p))
}

func TestNormalize_UnknownKindsDroppedThenFallback(t *testing.T) {
	p := Plan{Steps: []Step{{Kind: "think"}, {Kind: "reflect"}}}.Normalize(8)
	assert.Equal(t, kinds(Default()), kinds(p))
}

func TestNormalize_AliasesResolve(t *testing.T) {
	p := Plan{Steps: []Step{{Kind: "retrieve"}, {Kind: "score"}}}.Normalize(8)
	assert.Equal(t, []StepKind{StepSearch, StepDecide, StepFinalize}, kinds(p))
}

func TestNormalize_AlwaysEndsWithFinalize(t *testing.T) {
	p := Plan{Steps: []Step{{Kind: StepFinalize}, {Kind: StepSearch}}}.Normalize(8)
	require.NotEmpty(t, p.Steps)
	assert.Equal(t, StepFinalize, p.Steps[len(p.Steps)-1].Kind)
	assert.Equal(t, []StepKind{StepSearch, StepFinalize}, kinds(p))
}

func TestNormalize_TrimsToMaxSteps(t *testing.T) {
	long := Plan{Steps: []Step{
		{Kind: StepSearch}, {Kind: StepDecide}, {Kind: StepExplain},
		{Kind: StepSearch}, {Kind: StepDecide}, {Kind: StepExplain},
	}}
	p := long.Normalize(4)
	assert.Len(t, p.Steps, 4)
	assert.Equal(t, StepFinalize, p.Steps[3].Kind)
}
