package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/psantana5/loadtime/internal/render"
)

// DefaultUpdateInterval is how often the line is redrawn.
const DefaultUpdateInterval = 500 * time.Millisecond

// Options configures the progress reporter.
type Options struct {
	// Layout controls the rendered line.
	Layout render.Layout

	// History is the previous run's duration in seconds, nil if unknown.
	History *float64

	// Output receives every rendered line. Nil discards output.
	Output func(string)

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// State is the render state owned by one reporter run.
type State struct {
	StartTime       time.Time
	Elapsed         float64
	HistoricalTotal *float64
	LastLine        string
}

// Reporter redraws a progress line on a fixed interval until stopped.
type Reporter struct {
	opts Options

	mu      sync.Mutex
	state   State
	started bool

	completed atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = func(string) {}
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = DefaultUpdateInterval
	}
	if opts.Layout.BarWidth <= 0 {
		opts.Layout.BarWidth = render.DefaultBarWidth
	}

	return &Reporter{
		opts:   opts,
		state:  State{HistoricalTotal: opts.History},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the update goroutine measuring from start.
// Calling Start more than once has no effect.
func (r *Reporter) Start(start time.Time) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.state.StartTime = start
	r.mu.Unlock()

	go r.updateLoop()
}

// Stop finishes a successful run: the final line shows 100% when a
// historical total exists. It blocks until the goroutine has exited.
func (r *Reporter) Stop() {
	r.finish(true)
}

// Abort finishes a failed run: the last line is kept as drawn.
// It blocks until the goroutine has exited.
func (r *Reporter) Abort() {
	r.finish(false)
}

func (r *Reporter) finish(completed bool) {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return
	}

	r.stopOnce.Do(func() {
		r.completed.Store(completed)
		close(r.stopCh)
	})
	<-r.doneCh
}

// Done is closed once the update goroutine has exited.
func (r *Reporter) Done() <-chan struct{} {
	return r.doneCh
}

// State returns a copy of the current render state.
func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	r.printProgress()
	for {
		select {
		case <-r.stopCh:
			r.printFinal(r.completed.Load())
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	r.mu.Lock()
	r.state.Elapsed = time.Since(r.state.StartTime).Seconds()
	r.state.LastLine = r.opts.Layout.Line(r.state.Elapsed, r.state.HistoricalTotal)
	line := r.state.LastLine
	r.mu.Unlock()

	r.opts.Output("\r" + line)
}

// printFinal redraws the last line once more and terminates it.
func (r *Reporter) printFinal(completed bool) {
	r.mu.Lock()
	line := r.state.LastLine
	if completed {
		line = r.opts.Layout.Final(r.state.Elapsed, r.state.HistoricalTotal)
		r.state.LastLine = line
	}
	r.mu.Unlock()

	r.opts.Output("\r" + line + "\n")
}
