// Package forager is a shopping recommendation engine: a staged
// pipeline that gathers offers through resilient tool calls, ranks them
// with a multi-criteria decision core and explains the outcome.
package forager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/forager/internal/runtime"
	"github.com/aretw0/forager/pkg/decision"
	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/invoker"
	"github.com/aretw0/forager/pkg/plan"
	"github.com/aretw0/forager/pkg/ports"
	"github.com/aretw0/forager/pkg/registry"
)

// Version is the engine release version.
const Version = "0.3.1"

// Well-known tool names on the engine's registry.
const (
	ToolFetchOffers = "fetch_offers"
	ToolSummarize   = "summarize"
)

// Engine is the high-level entry point. It owns the tool registry and
// builds a fresh pipeline per request, so one Engine serves concurrent
// callers.
type Engine struct {
	registry *registry.Registry
	decision *decision.Engine
	plan     plan.Plan
	criteria []domain.Criterion
	budget   int
	deadline time.Duration
	topK     int
	maxSteps int

	store      ports.StateStore
	summarizer ports.Summarizer
	searchTool domain.ToolFunc
	toolOpts   []invoker.Option

	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	breakerThres int
	breakerCool  time.Duration
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used across the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks registers lifecycle callbacks for stages and tools.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = e.hooks.Merge(hooks) }
}

// WithStore persists finished sessions for later replay.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithSummarizer enables LLM rephrasing of explanation summaries.
func WithSummarizer(s ports.Summarizer) Option {
	return func(e *Engine) { e.summarizer = s }
}

// WithCriteria replaces the default scoring criteria.
func WithCriteria(criteria []domain.Criterion) Option {
	return func(e *Engine) { e.criteria = criteria }
}

// WithBudget caps the per-run spend in budget units. Zero disables the
// cap.
func WithBudget(units int) Option {
	return func(e *Engine) { e.budget = units }
}

// WithDeadline sets the per-run wall-clock limit.
func WithDeadline(d time.Duration) Option {
	return func(e *Engine) { e.deadline = d }
}

// WithTopK bounds how many offers a search keeps by default.
func WithTopK(k int) Option {
	return func(e *Engine) { e.topK = k }
}

// WithPlan replaces the default search-decide-explain-finalize plan.
// The plan is normalized: unknown kinds drop, a finalize is appended.
func WithPlan(p plan.Plan) Option {
	return func(e *Engine) { e.plan = p }
}

// WithMaxSteps bounds plan length after normalization.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithSearchTool installs a raw tool function as the offer source,
// bypassing the SearchProvider adapter. Useful when the source already
// speaks the tool payload shape.
func WithSearchTool(fn domain.ToolFunc) Option {
	return func(e *Engine) { e.searchTool = fn }
}

// WithToolOptions tunes timeout and retry behavior for every registered
// tool.
func WithToolOptions(opts ...invoker.Option) Option {
	return func(e *Engine) { e.toolOpts = append(e.toolOpts, opts...) }
}

// WithBreaker tunes the shared circuit breaker settings.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(e *Engine) {
		e.breakerThres = threshold
		e.breakerCool = cooldown
	}
}

// WithDecisionEngine replaces the default decision engine, e.g. to
// disable Pareto filtering.
func WithDecisionEngine(d *decision.Engine) Option {
	return func(e *Engine) { e.decision = d }
}

// New creates an Engine around an offer source. provider may be nil
// when WithSearchTool supplies the source directly.
func New(provider ports.SearchProvider, opts ...Option) (*Engine, error) {
	e := &Engine{
		decision:     decision.NewEngine(),
		plan:         plan.Default(),
		criteria:     domain.DefaultCriteria(),
		deadline:     runtime.DefaultDeadline,
		topK:         runtime.DefaultTopK,
		maxSteps:     plan.DefaultMaxSteps,
		breakerThres: registry.DefaultBreakerThreshold,
		breakerCool:  registry.DefaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.searchTool == nil {
		if provider == nil {
			return nil, fmt.Errorf("an offer source is required: pass a SearchProvider or WithSearchTool")
		}
		e.searchTool = providerTool(provider)
	}

	regOpts := []registry.Option{
		registry.WithBreaker(e.breakerThres, e.breakerCool),
		registry.WithHooks(e.hooks),
	}
	if e.logger != nil {
		regOpts = append(regOpts, registry.WithLogger(e.logger))
	}
	e.registry = registry.New(regOpts...)

	if err := e.registry.Register(ToolFetchOffers, e.searchTool, e.toolOpts...); err != nil {
		return nil, err
	}
	if e.summarizer != nil {
		if err := e.registry.Register(ToolSummarize, summarizerTool(e.summarizer), e.toolOpts...); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// RegisterTool adds an extra tool to the engine's registry, available
// to plan steps that name it.
func (e *Engine) RegisterTool(name string, fn domain.ToolFunc, opts ...invoker.Option) error {
	return e.registry.Register(name, fn, opts...)
}

// Recommend runs the pipeline for one query and returns the persisted
// session record. The error is non-nil only for engine-internal
// invariant violations; degraded runs return a valid record whose
// metadata names the termination reason.
func (e *Engine) Recommend(ctx context.Context, query string, rc domain.RunContext) (*domain.SessionRecord, error) {
	if rc.RequestID == "" {
		rc.RequestID = uuid.NewString()
	}
	if rc.TopK <= 0 {
		rc.TopK = e.topK
	}
	if len(rc.Criteria) == 0 {
		rc.Criteria = e.criteria
	}

	state := domain.NewState(rc.RequestID, query, e.budget)
	stages := runtime.BuildStages(e.plan.Normalize(e.maxSteps), runtime.StageDeps{
		Tools:       e.registry,
		Decision:    e.decision,
		Criteria:    e.criteria,
		SearchTool:  ToolFetchOffers,
		SummaryTool: e.summaryToolName(),
	})

	pipeOpts := []runtime.Option{
		runtime.WithDeadline(e.deadline),
		runtime.WithHooks(e.hooks),
	}
	if e.logger != nil {
		pipeOpts = append(pipeOpts, runtime.WithLogger(e.logger))
	}
	pipeline := runtime.NewPipeline(stages, pipeOpts...)

	env, err := pipeline.Run(ctx, state, rc)
	if err != nil {
		return nil, err
	}

	record := &domain.SessionRecord{
		SessionID: state.SessionID,
		Query:     query,
		Envelope:  *env,
		Log:       state.Log,
		CreatedAt: time.Now().UTC(),
	}
	if e.store != nil {
		if err := e.store.Save(ctx, record); err != nil && e.logger != nil {
			e.logger.Warn("failed to persist session", "session", record.SessionID, "err", err)
		}
	}
	return record, nil
}

// Session replays a stored session record.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.SessionRecord, error) {
	if e.store == nil {
		return nil, domain.ErrSessionNotFound
	}
	return e.store.Load(ctx, sessionID)
}

// Sessions lists stored session IDs.
func (e *Engine) Sessions(ctx context.Context) ([]string, error) {
	if e.store == nil {
		return []string{}, nil
	}
	return e.store.List(ctx)
}

// Plan returns the engine's normalized execution plan.
func (e *Engine) Plan() plan.Plan {
	return e.plan.Normalize(e.maxSteps)
}

func (e *Engine) summaryToolName() string {
	if e.summarizer == nil {
		return ""
	}
	return ToolSummarize
}

// providerTool adapts a SearchProvider to the tool payload shape used
// by the search stage.
func providerTool(p ports.SearchProvider) domain.ToolFunc {
	return func(ctx context.Context, payload map[string]any) (any, error) {
		query, _ := payload["query"].(string)
		topK := 0
		switch v := payload["top_k"].(type) {
		case int:
			topK = v
		case float64:
			topK = int(v)
		}
		return p.Search(ctx, query, topK, payload)
	}
}

func summarizerTool(s ports.Summarizer) domain.ToolFunc {
	return func(ctx context.Context, payload map[string]any) (any, error) {
		expl := domain.Explanation{}
		if v, ok := payload["winner"].(string); ok {
			expl.Winner = v
		}
		if v, ok := payload["summary"].(string); ok {
			expl.Summary = v
		}
		query, _ := payload["query"].(string)
		return s.Summarize(ctx, query, expl)
	}
}
