package loadtime

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/psantana5/loadtime/internal/hfcache"
	"github.com/psantana5/loadtime/internal/observe"
	"github.com/psantana5/loadtime/internal/progress"
	"github.com/psantana5/loadtime/internal/render"
	"github.com/psantana5/loadtime/internal/report"
	"github.com/psantana5/loadtime/internal/store"
	"github.com/psantana5/loadtime/pkg/logging"
)

// Operation is the long-running call being timed.
type Operation[T any] func() (T, error)

// Config configures a Timer. Zero values select the defaults.
type Config struct {
	// Name identifies the operation and is its storage key. Required.
	Name string

	// Message replaces the default `Loading "<name>" ... ` prefix.
	Message string

	// HidePercentage turns off the bar and percentage.
	HidePercentage bool

	// CacheDirName is the directory under ~/.cache holding records.
	// Default: "loadtime"
	CacheDirName string

	// CacheDir overrides the full record directory.
	CacheDir string

	// LargeDownload suppresses output when CachePresent reports the
	// resource is not cached locally, leaving the terminal to the downloader.
	LargeDownload bool

	// CachePresent decides whether Name is already cached.
	// Default: Hugging Face hub cache lookup
	CachePresent func(name string) bool

	// Quiet suppresses all progress output.
	Quiet bool

	// Output receives rendered lines.
	// Default: written to stdout as-is
	Output func(string)

	// UpdateInterval is how often the line is redrawn.
	// Default: 500ms
	UpdateInterval time.Duration

	// StartTime backdates the clock, e.g. to the creation time of a process
	// that was already running. Default: when Start is called
	StartTime time.Time

	// BarWidth is the number of bar cells.
	// Default: 20
	BarWidth int

	// Logger receives diagnostics. Default: discarded
	Logger *logging.Logger
}

// State is the lifecycle position of a Timer.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Timer runs one operation with a progress display. It is single-use.
type Timer[T any] struct {
	cfg        Config
	op         Operation[T]
	store      *store.Store
	record     store.Record
	suppressed bool
	logger     *logging.Logger

	mu       sync.Mutex
	state    State
	reporter *progress.Reporter
	result   *report.Result
}

// New validates cfg, loads the stored history for cfg.Name and returns a
// Timer ready to Start. The record file is created if it does not exist.
func New[T any](cfg Config, op func() (T, error)) (*Timer[T], error) {
	if op == nil {
		return nil, &ConfigError{Field: "operation", Message: "no operation supplied"}
	}
	if cfg.Name == "" {
		return nil, &ConfigError{Field: "name", Message: "must not be empty"}
	}

	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.CachePresent == nil {
		cfg.CachePresent = hfcache.Present
	}
	if cfg.Output == nil {
		cfg.Output = func(s string) { fmt.Fprint(os.Stdout, s) }
	}

	logger := cfg.Logger.WithField("name", cfg.Name)

	dir := cfg.CacheDir
	if dir == "" {
		var err error
		dir, err = store.DefaultDir(cfg.CacheDirName)
		if err != nil {
			// Without a home directory nothing can be persisted; keep going
			// with a store whose writes fail and are ignored.
			logger.Debug("No cache directory available", map[string]interface{}{"error": err.Error()})
		}
	}

	s := store.New(dir, cfg.Logger)
	t := &Timer[T]{
		cfg:        cfg,
		op:         op,
		store:      s,
		record:     s.Load(cfg.Name),
		suppressed: cfg.Quiet || (cfg.LargeDownload && !cfg.CachePresent(cfg.Name)),
		logger:     logger,
	}
	return t, nil
}

// Run creates a Timer and starts it.
func Run[T any](cfg Config, op func() (T, error)) (T, error) {
	t, err := New(cfg, op)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Start()
}

// Start runs the operation on the calling goroutine while the reporter
// redraws progress, then stores the observed duration and returns the
// operation's result. Errors and panics from the operation propagate
// unchanged; the reporter is stopped on every path and the duration is only
// stored for successful runs. Calls after the first return the zero value.
func (t *Timer[T]) Start() (T, error) {
	var zero T

	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return zero, nil
	}
	t.state = StateRunning
	history := t.record.TotalTime
	t.reporter = progress.NewReporter(progress.Options{
		Layout: render.Layout{
			Name:           t.cfg.Name,
			Message:        t.cfg.Message,
			ShowPercentage: !t.cfg.HidePercentage,
			BarWidth:       t.cfg.BarWidth,
		},
		History:        history,
		Output:         t.sink(),
		UpdateInterval: t.cfg.UpdateInterval,
	})
	t.mu.Unlock()

	report.Global().IncrStarted()
	timing := observe.NewTiming()
	if !t.cfg.StartTime.IsZero() && t.cfg.StartTime.Before(timing.StartedAt) {
		timing = observe.NewTimingAt(t.cfg.StartTime)
	}
	t.reporter.Start(timing.StartedAt)
	t.logger.Debug("Run started", map[string]interface{}{
		"has_history": render.HasHistory(history),
		"suppressed":  t.suppressed,
	})

	completed := false
	var opErr error
	defer func() {
		if completed {
			return
		}
		// Error return or panic: finish the line, join the reporter and
		// leave the stored duration untouched.
		t.reporter.Abort()
		timing.Complete()
		result := report.NewResult(t.cfg.Name, timing.StartedAt, timing.CompletedAt, history)
		result.SetFailed(opErr)
		t.finish(result)
	}()

	value, err := t.op()
	if err != nil {
		opErr = err
		return value, err
	}

	t.reporter.Stop()
	timing.Complete()
	completed = true

	t.store.Save(t.cfg.Name, store.WithSeconds(timing.Seconds()))
	t.finish(report.NewResult(t.cfg.Name, timing.StartedAt, timing.CompletedAt, history))
	return value, nil
}

func (t *Timer[T]) finish(result *report.Result) {
	result.SetSuppressed(t.suppressed)
	report.Global().RecordResult(result)
	report.GlobalOverruns().Record(result)

	t.mu.Lock()
	t.result = result
	t.state = StateStopped
	t.mu.Unlock()

	t.logger.Debug("Run finished", map[string]interface{}{
		"outcome":  string(result.Outcome),
		"duration": result.DurationSeconds,
	})
}

func (t *Timer[T]) sink() func(string) {
	if t.suppressed {
		return func(string) {}
	}
	return t.cfg.Output
}

// ClearStoredData forgets the recorded duration for this operation.
// A Timer that has not started yet will then run without history.
func (t *Timer[T]) ClearStoredData() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store.Clear(t.cfg.Name)
	if t.state == StateIdle {
		t.record = store.Record{}
	}
}

// HistoricalTotal returns the previous run's duration in seconds, if known.
func (t *Timer[T]) HistoricalTotal() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record.Seconds()
}

// Suppressed reports whether progress output is disabled for this run.
func (t *Timer[T]) Suppressed() bool {
	return t.suppressed
}

// State returns the lifecycle position.
func (t *Timer[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the run summary once the Timer has stopped, nil before.
func (t *Timer[T]) Result() *report.Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// ReporterDone is closed once the reporter goroutine has exited. It is nil
// before Start.
func (t *Timer[T]) ReporterDone() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reporter == nil {
		return nil
	}
	return t.reporter.Done()
}

// RecentOverruns returns up to n runs in this process that took longer than
// their recorded estimate, newest first. n <= 0 returns all that are held.
func RecentOverruns(n int) []report.OverrunSample {
	return report.GlobalOverruns().GetRecent(n)
}

// StorePath returns the file holding this operation's record.
func (t *Timer[T]) StorePath() string {
	return t.store.Path(t.cfg.Name)
}
