package domain

import "time"

// TerminationReason tags why a run ended. Budget and deadline endings
// are normal, explicitly tagged paths, not errors.
type TerminationReason string

const (
	TerminationOK             TerminationReason = "ok"
	TerminationTimeout        TerminationReason = "timeout"
	TerminationBudgetExceeded TerminationReason = "budget_exceeded"
	TerminationNoOffers       TerminationReason = "no_offers"

	// TerminationInvariant marks a run that hard-failed on an internal
	// invariant violation. The envelope accompanies a non-nil error;
	// the tag keeps it honest even if the caller drops that error.
	TerminationInvariant TerminationReason = "invariant_violation"
)

// RankedOffer is one row of the final ranking.
type RankedOffer struct {
	ID         string  `json:"id"`
	TotalScore float64 `json:"total_score"`
	Rank       int     `json:"rank"`
}

// Scoring is the decision engine's ranked output.
type Scoring struct {
	// Best is the winning offer ID, empty when no offers were scored.
	Best       string        `json:"best,omitempty"`
	Confidence float64       `json:"confidence"`
	Ranked     []RankedOffer `json:"ranked"`
}

// Tradeoff is a structured statement comparing two ranked offers on one
// criterion.
type Tradeoff struct {
	Criterion string  `json:"criterion"`
	Leader    string  `json:"leader"`
	RunnerUp  string  `json:"runner_up"`
	Delta     float64 `json:"delta"`
	Note      string  `json:"note"`
}

// OptionView is the per-offer portion of an explanation.
type OptionView struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

// Explanation is the structured reasoning behind a recommendation. It
// is template-generated and deterministic; an external LLM may rephrase
// Summary but must not alter the other fields.
type Explanation struct {
	Winner          string            `json:"winner,omitempty"`
	Tradeoffs       []Tradeoff        `json:"tradeoffs"`
	BestByCriterion map[string]string `json:"best_by_criterion"`
	PerOption       []OptionView      `json:"per_option"`
	Summary         string            `json:"summary"`
}

// Metadata describes how a run terminated.
type Metadata struct {
	LatencyMS         int64             `json:"latency_ms"`
	StepCount         int               `json:"step_count"`
	TerminationReason TerminationReason `json:"termination_reason"`
}

// Envelope is the structurally valid response every caller receives,
// even under partial failure: list and map fields are always non-nil.
type Envelope struct {
	Offers      []Offer     `json:"offers"`
	Scoring     Scoring     `json:"scoring"`
	Explanation Explanation `json:"explanation"`
	Metadata    Metadata    `json:"metadata"`
}

// EmptyScoring returns the well-typed zero scoring structure.
func EmptyScoring() Scoring {
	return Scoring{Ranked: []RankedOffer{}}
}

// EmptyExplanation returns the well-typed zero explanation structure.
func EmptyExplanation(summary string) Explanation {
	return Explanation{
		Tradeoffs:       []Tradeoff{},
		BestByCriterion: map[string]string{},
		PerOption:       []OptionView{},
		Summary:         summary,
	}
}

// RunContext carries per-request parameters into the pipeline.
type RunContext struct {
	RequestID string         `json:"request_id"`
	TopK      int            `json:"top_k"`
	Timeout   time.Duration  `json:"timeout"`
	Criteria  []Criterion    `json:"criteria,omitempty"`
	Prefs     map[string]any `json:"prefs,omitempty"`
}

// SessionRecord is what the optional state store persists per request:
// the final envelope plus the audit trail.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Envelope  Envelope  `json:"envelope"`
	Log       []StepLog `json:"log"`
	CreatedAt time.Time `json:"created_at"`
}
