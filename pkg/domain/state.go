package domain

// Well-known fact keys. Each stage declares which keys it reads and
// writes; no stage may delete a key written by another stage.
const (
	// FactOffers holds []Offer gathered by the search stage.
	FactOffers = "offers"
	// FactScoring holds the Scoring produced by the decide stage.
	FactScoring = "scoring"
	// FactExplanation holds the Explanation produced by the decide stage
	// and refined by the explain stage.
	FactExplanation = "explanation"
	// FactIntent holds the query.Intent parsed by the search stage.
	FactIntent = "intent"
)

// State is the mutable working memory threaded through all pipeline
// stages. It is created once per request, mutated in place by each
// stage, and discarded after the response is returned. A State must
// never be shared across concurrent requests.
type State struct {
	// SessionID correlates all log entries for one request. Immutable.
	SessionID string `json:"session_id"`

	// Query is the raw user input. Immutable.
	Query string `json:"query"`

	// Facts is the append/overwrite-only working memory. Keys are
	// stage-defined namespaces (see the Fact* constants).
	Facts map[string]any `json:"facts"`

	// Log is the append-only audit trail, one entry per stage invocation
	// including failures.
	Log []StepLog `json:"log"`

	// BudgetUnits caps total spend for the run. Zero disables the guard.
	BudgetUnits int `json:"budget_units"`

	// SpentUnits is the monotonic spend counter.
	SpentUnits int `json:"spent_units"`

	// StepIndex is the index of the stage currently executing.
	StepIndex int `json:"step_index"`

	// Done marks the run as complete. Once true, Output is immutable and
	// no further stage may run.
	Done bool `json:"done"`

	// Output is the final result, set exactly once by MarkDone.
	Output map[string]any `json:"output,omitempty"`
}

// NewState creates a fresh state for one request.
func NewState(sessionID, query string, budgetUnits int) *State {
	return &State{
		SessionID:   sessionID,
		Query:       query,
		Facts:       make(map[string]any),
		BudgetUnits: budgetUnits,
	}
}

// AddLog appends an entry to the audit trail.
func (s *State) AddLog(entry StepLog) {
	s.Log = append(s.Log, entry)
}

// Spend debits n units. The counter only ever grows; non-positive
// amounts are ignored.
func (s *State) Spend(n int) {
	if n <= 0 {
		return
	}
	s.SpentUnits += n
}

// BudgetExhausted reports whether the spend counter has met the budget.
// A zero budget never exhausts.
func (s *State) BudgetExhausted() bool {
	return s.BudgetUnits > 0 && s.SpentUnits >= s.BudgetUnits
}

// MarkDone records the final output and completes the run. Later calls
// are ignored so the first completion wins.
func (s *State) MarkDone(output map[string]any) {
	if s.Done {
		return
	}
	s.Output = output
	s.Done = true
}

// FactKeys returns the current fact keys in unspecified order. Used for
// redacted log snapshots: keys are loggable, values may not be.
func (s *State) FactKeys() []string {
	keys := make([]string, 0, len(s.Facts))
	for k := range s.Facts {
		keys = append(keys, k)
	}
	return keys
}

// Offers returns the offers fact, or nil when the search stage has not
// run yet.
func (s *State) Offers() []Offer {
	v, _ := s.Facts[FactOffers].([]Offer)
	return v
}

// SetOffers overwrites the offers fact.
func (s *State) SetOffers(offers []Offer) {
	s.Facts[FactOffers] = offers
}

// Scoring returns the scoring fact and whether it has been written.
func (s *State) Scoring() (Scoring, bool) {
	v, ok := s.Facts[FactScoring].(Scoring)
	return v, ok
}

// SetScoring overwrites the scoring fact.
func (s *State) SetScoring(sc Scoring) {
	s.Facts[FactScoring] = sc
}

// Explanation returns the explanation fact and whether it has been
// written.
func (s *State) Explanation() (Explanation, bool) {
	v, ok := s.Facts[FactExplanation].(Explanation)
	return v, ok
}

// SetExplanation overwrites the explanation fact.
func (s *State) SetExplanation(ex Explanation) {
	s.Facts[FactExplanation] = ex
}
