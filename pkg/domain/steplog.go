package domain

// StepLog is one row of the per-request audit trail. Summaries are
// redacted views (context keys minus secrets, fact key names, indexes);
// they must never contain secrets or raw fact values.
type StepLog struct {
	Stage         string         `json:"stage"`
	InputSummary  map[string]any `json:"input_summary,omitempty"`
	OutputSummary map[string]any `json:"output_summary,omitempty"`
	Error         string         `json:"error,omitempty"`
	LatencyMS     int64          `json:"latency_ms"`
}
