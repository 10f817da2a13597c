// Package runtime executes the stage pipeline: ordered transforms over
// a shared execution state, bounded by a wall-clock deadline and a
// spend budget, always producing a structurally valid output envelope.
package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/ports"
)

// DefaultDeadline bounds a whole run when the caller does not supply a
// timeout.
const DefaultDeadline = 20 * time.Second

// Pipeline advances a State through its stages in order. A Pipeline is
// immutable after construction and safe for concurrent runs; all
// per-request mutation happens on the State.
type Pipeline struct {
	stages   []ports.Stage
	deadline time.Duration
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDeadline overrides the default wall-clock deadline.
func WithDeadline(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.deadline = d
		}
	}
}

// WithLogger sets the structured logger. Nil means no-op.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithHooks registers lifecycle callbacks fired around every stage.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) { p.hooks = hooks }
}

// NewPipeline creates a pipeline over an ordered stage list. The last
// stage is expected to be a finalize-equivalent; plan.Normalize
// guarantees that for plan-built pipelines.
func NewPipeline(stages []ports.Stage, opts ...Option) *Pipeline {
	p := &Pipeline{
		stages:   stages,
		deadline: DefaultDeadline,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Run executes the pipeline over state. It always returns a
// structurally valid envelope; the error is non-nil only for an
// engine-internal invariant violation, which is a bug and must not be
// masked by the fail-soft machinery.
func (p *Pipeline) Run(ctx context.Context, state *domain.State, rc domain.RunContext) (*domain.Envelope, error) {
	start := time.Now()

	deadline := rc.Timeout
	if deadline <= 0 {
		deadline = p.deadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	reason := domain.TerminationOK
	for _, stage := range p.stages {
		if state.Done {
			break
		}
		if ctx.Err() != nil {
			reason = domain.TerminationTimeout
			break
		}

		// Budget guard: the debit happens before the stage runs, and a
		// stage whose debit alone meets the budget never runs.
		state.Spend(stage.Cost())
		if state.BudgetExhausted() {
			reason = domain.TerminationBudgetExceeded
			p.logger.Info("budget exhausted, stopping",
				"session", state.SessionID, "stage", stage.Name(),
				"spent", state.SpentUnits, "budget", state.BudgetUnits)
			break
		}

		if err := p.runStage(ctx, stage, state, rc); err != nil {
			// Only invariant violations reach here; everything else is
			// absorbed fail-soft by the wrapper.
			return p.assemble(state, domain.TerminationInvariant, start), err
		}

		if ctx.Err() != nil && !state.Done {
			reason = domain.TerminationTimeout
			break
		}
	}

	env := p.assemble(state, reason, start)
	if !state.Done {
		state.MarkDone(envelopeOutput(env))
	}
	return env, nil
}

// assemble builds the response envelope from whatever facts have
// accumulated, defaulting every missing key to an empty but well-typed
// value so callers always receive a valid structure.
func (p *Pipeline) assemble(state *domain.State, reason domain.TerminationReason, start time.Time) *domain.Envelope {
	offers := state.Offers()
	if offers == nil {
		offers = []domain.Offer{}
	}
	scoring, ok := state.Scoring()
	if !ok {
		scoring = domain.EmptyScoring()
	}
	expl, ok := state.Explanation()
	if !ok {
		expl = domain.EmptyExplanation("no results")
	}
	if reason == domain.TerminationOK && len(offers) == 0 {
		reason = domain.TerminationNoOffers
	}
	return &domain.Envelope{
		Offers:      offers,
		Scoring:     scoring,
		Explanation: expl,
		Metadata: domain.Metadata{
			LatencyMS:         time.Since(start).Milliseconds(),
			StepCount:         state.StepIndex,
			TerminationReason: reason,
		},
	}
}

// envelopeOutput mirrors the envelope into the state's output map.
func envelopeOutput(env *domain.Envelope) map[string]any {
	return map[string]any{
		"offers":      env.Offers,
		"scoring":     env.Scoring,
		"explanation": env.Explanation,
		"metadata":    env.Metadata,
	}
}
