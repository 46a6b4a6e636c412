package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/loadtime/pkg/logging"
)

// Outcome is how a timed run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Result is the record of one timed run. Built once at completion.
type Result struct {
	RunID string `json:"run_id"`
	Name  string `json:"name"`

	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`

	// HistoricalTotal is the estimate the run was displayed against.
	HistoricalTotal *float64 `json:"historical_total_seconds"`

	Outcome    Outcome `json:"outcome"`
	Error      string  `json:"error,omitempty"`
	Suppressed bool    `json:"output_suppressed"`
}

// NewResult creates a completed result; use SetFailed for failures.
func NewResult(name string, startTime, endTime time.Time, history *float64) *Result {
	d := endTime.Sub(startTime)
	return &Result{
		RunID:           uuid.NewString(),
		Name:            name,
		StartTime:       startTime,
		EndTime:         endTime,
		Duration:        d,
		DurationSeconds: d.Seconds(),
		HistoricalTotal: history,
		Outcome:         OutcomeCompleted,
	}
}

// SetFailed marks the run as failed with the operation's error, if any.
func (r *Result) SetFailed(err error) {
	r.Outcome = OutcomeFailed
	if err != nil {
		r.Error = err.Error()
	}
}

// SetSuppressed records that no progress output was shown.
func (r *Result) SetSuppressed(suppressed bool) {
	r.Suppressed = suppressed
}

// Overran reports whether a completed run took longer than its estimate.
func (r *Result) Overran() bool {
	if r.Outcome != OutcomeCompleted || r.HistoricalTotal == nil || *r.HistoricalTotal <= 0 {
		return false
	}
	return r.Duration.Seconds() > *r.HistoricalTotal
}

// LogSummary emits a one-line human-readable summary at INFO.
func (r *Result) LogSummary(logger *logging.Logger) {
	estimate := "none"
	if r.HistoricalTotal != nil {
		estimate = fmt.Sprintf("%.1fs", *r.HistoricalTotal)
	}

	logger.Info(fmt.Sprintf("RUN %s | name=%s | outcome=%s | runtime=%.1fs | estimate=%s | overran=%t",
		r.RunID,
		r.Name,
		r.Outcome,
		r.Duration.Seconds(),
		estimate,
		r.Overran(),
	))
}
