package models

import "time"

// Status is the outcome reported to the presentation layer.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

const (
	MessageMissingKey  = "Please replace 'YOUR_API_KEY' with your actual FRED API key."
	MessageUnavailable = "Could not load data. Please check your API key and network connection."
)

// Result is the pipeline outcome: either the full yearly table or a typed
// failure reason with no rows.
type Result struct {
	Status     Status            `json:"status"`
	Reason     FailureKind       `json:"reason,omitempty"`
	Message    string            `json:"message,omitempty"`
	Rows       []YearlyAggregate `json:"rows"`
	RunID      string            `json:"run_id,omitempty"`
	ComputedAt time.Time         `json:"computed_at"`
	Cached     bool              `json:"cached"`
}

// Available reports whether there is something to chart.
func (r Result) Available() bool {
	return r.Status == StatusOK && len(r.Rows) > 0
}

// Unavailable builds a failed result for err. Rows are always empty.
func Unavailable(err error, runID string, at time.Time) Result {
	kind := KindOf(err)
	msg := MessageUnavailable
	if kind == FailureConfiguration {
		msg = MessageMissingKey
	}
	return Result{
		Status:     StatusUnavailable,
		Reason:     kind,
		Message:    msg,
		Rows:       []YearlyAggregate{},
		RunID:      runID,
		ComputedAt: at,
	}
}
