package report

import "sync"

// OverrunSample describes a run that took longer than its estimate.
type OverrunSample struct {
	RunID    string  `json:"run_id"`
	Name     string  `json:"name"`
	Expected float64 `json:"expected_seconds"`
	Actual   float64 `json:"actual_seconds"`
}

// OverrunLog maintains a ring buffer of recent overruns (last N)
type OverrunLog struct {
	samples []OverrunSample
	maxSize int
	mu      sync.RWMutex
}

var globalOverrunLog = NewOverrunLog(50)

// NewOverrunLog creates an overrun log with fixed size
func NewOverrunLog(maxSize int) *OverrunLog {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &OverrunLog{
		samples: make([]OverrunSample, 0, maxSize),
		maxSize: maxSize,
	}
}

// GlobalOverruns returns the process-wide overrun log
func GlobalOverruns() *OverrunLog {
	return globalOverrunLog
}

// Record adds r if it overran; other results are ignored.
func (o *OverrunLog) Record(r *Result) {
	if !r.Overran() {
		return
	}

	sample := OverrunSample{
		RunID:    r.RunID,
		Name:     r.Name,
		Expected: *r.HistoricalTotal,
		Actual:   r.Duration.Seconds(),
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// Ring buffer: if full, drop oldest
	if len(o.samples) >= o.maxSize {
		o.samples = o.samples[1:]
	}
	o.samples = append(o.samples, sample)
}

// GetRecent returns recent overruns (newest first)
func (o *OverrunLog) GetRecent(n int) []OverrunSample {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if n <= 0 || n > len(o.samples) {
		n = len(o.samples)
	}

	result := make([]OverrunSample, n)
	for i := 0; i < n; i++ {
		result[i] = o.samples[len(o.samples)-1-i]
	}
	return result
}

// Count returns the number of overruns held
func (o *OverrunLog) Count() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.samples)
}
