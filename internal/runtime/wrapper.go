package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/ports"
)

// redactedKeys are preference keys that never appear in step logs.
var redactedKeys = map[string]struct{}{
	"api_key":  {},
	"secret":   {},
	"secrets":  {},
	"token":    {},
	"password": {},
}

// runStage executes one stage with the fail-soft contract: on any
// non-invariant error (including a panic inside the stage) the fact map
// is restored to its pre-stage snapshot, the failure is recorded in the
// step log, and the pipeline moves on. Invariant violations are
// returned to the caller untouched.
func (p *Pipeline) runStage(ctx context.Context, stage ports.Stage, state *domain.State, rc domain.RunContext) error {
	input := inputSummary(state, rc)
	if p.hooks.OnStageEnter != nil {
		p.hooks.OnStageEnter(ctx, &domain.StageEvent{
			Timestamp: time.Now(),
			Type:      domain.EventStageEnter,
			SessionID: state.SessionID,
			Stage:     stage.Name(),
			StepIndex: state.StepIndex,
		})
	}

	saved := snapshotFacts(state.Facts)
	start := time.Now()
	err := safeRun(ctx, stage, state, rc)
	latency := time.Since(start).Milliseconds()

	entry := domain.StepLog{
		Stage:        stage.Name(),
		InputSummary: input,
		LatencyMS:    latency,
	}

	if err != nil {
		if domain.IsInvariant(err) {
			entry.Error = err.Error()
			state.AddLog(entry)
			state.StepIndex++
			p.fireLeave(ctx, stage, state, latency, err)
			return err
		}
		state.Facts = saved
		entry.Error = err.Error()
		entry.OutputSummary = map[string]any{"recovered": true}
		state.AddLog(entry)
		state.StepIndex++
		p.logger.Warn("stage failed, state restored",
			"session", state.SessionID, "stage", stage.Name(), "err", err)
		p.fireLeave(ctx, stage, state, latency, err)
		return nil
	}

	entry.OutputSummary = map[string]any{
		"fact_keys": state.FactKeys(),
		"done":      state.Done,
	}
	state.AddLog(entry)
	state.StepIndex++
	p.logger.Debug("stage complete",
		"session", state.SessionID, "stage", stage.Name(), "latency_ms", latency)
	p.fireLeave(ctx, stage, state, latency, nil)
	return nil
}

func (p *Pipeline) fireLeave(ctx context.Context, stage ports.Stage, state *domain.State, latency int64, err error) {
	if p.hooks.OnStageLeave == nil {
		return
	}
	ev := &domain.StageEvent{
		Timestamp: time.Now(),
		Type:      domain.EventStageLeave,
		SessionID: state.SessionID,
		Stage:     stage.Name(),
		StepIndex: state.StepIndex,
		LatencyMS: latency,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	p.hooks.OnStageLeave(ctx, ev)
}

// safeRun invokes the stage, converting a panic into an error. A
// panicking stage must not take the whole run down with it.
func safeRun(ctx context.Context, stage ports.Stage, state *domain.State, rc domain.RunContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*domain.InvariantError); ok {
				err = ie
				return
			}
			err = fmt.Errorf("stage %s panicked: %v", stage.Name(), r)
		}
	}()
	return stage.Run(ctx, state, rc)
}

// snapshotFacts shallow-copies the fact map. Stages replace values
// wholesale rather than mutating them in place, so a shallow copy is
// enough to roll back a failed stage.
func snapshotFacts(facts map[string]any) map[string]any {
	saved := make(map[string]any, len(facts))
	for k, v := range facts {
		saved[k] = v
	}
	return saved
}

// inputSummary captures a redacted view of what the stage sees: which
// facts exist, which preferences are set, and where in the run we are.
// Values are never logged, only keys.
func inputSummary(state *domain.State, rc domain.RunContext) map[string]any {
	prefKeys := make([]string, 0, len(rc.Prefs))
	for k := range rc.Prefs {
		if _, hidden := redactedKeys[strings.ToLower(k)]; hidden {
			continue
		}
		prefKeys = append(prefKeys, k)
	}
	sort.Strings(prefKeys)
	return map[string]any{
		"fact_keys":  state.FactKeys(),
		"pref_keys":  prefKeys,
		"step_index": state.StepIndex,
	}
}
