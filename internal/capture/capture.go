// Package capture implements the listener state machine:
// {Idle, Armed, Reading, Done, Timeout}. Idle→Armed is compiling and
// installing a BPF expression on an already-open link; Armed→Reading
// spawns a unit of execution that signals readiness once and then blocks
// on the link with a deadline; Reading→{Done, Timeout} delivers exactly
// one Result.
package capture

import "time"

// Filterer is the narrow slice of *linklayer.Link that Arm needs — a
// compile/install primitive for a BPF expression.
type Filterer interface {
	SetBPF(expr string) error
}

// Arm compiles and installs expr on link, the Idle→Armed transition.
func Arm(link Filterer, expr string) error {
	return link.SetBPF(expr)
}

// FrameSource is the narrow slice of *linklayer.Link that Listener needs —
// a single blocking-with-internal-timeout read primitive returning (nil,
// nil) on its own read timeout so Listener can recheck its deadline.
type FrameSource interface {
	NextFrame() ([]byte, error)
}

// Result is the single value a Listener ever delivers: either a captured
// frame, or a zero-length timeout, or a terminal read error.
type Result struct {
	Frame    []byte
	TimedOut bool
	Err      error
}

// Listener races one capture read against a deadline, communicating with
// its owner exclusively through Ready and Done — no shared memory.
type Listener struct {
	link  FrameSource
	ready chan struct{}
	done  chan Result
}

// NewListener prepares a listener over an already-armed link. Run must be
// started (typically in its own goroutine) before the owner waits on
// Ready.
func NewListener(link FrameSource) *Listener {
	return &Listener{
		link:  link,
		ready: make(chan struct{}, 1),
		done:  make(chan Result, 1),
	}
}

// Ready is written to exactly once, before Run enters its blocking read
// loop: the happens-before edge required between "listener is armed" and
// "orchestrator may inject".
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Done delivers exactly one Result when Run returns.
func (l *Listener) Done() <-chan Result {
	return l.done
}

// Run executes the Armed→Reading→{Done,Timeout} transitions. It signals
// readiness immediately, then polls the link until a frame arrives or
// deadline passes. Intended to run in its own goroutine; Run itself never
// spawns one, keeping the concurrency decision (goroutine vs. plain
// poll-loop) at the call site — either satisfies the contract equally
// well.
func (l *Listener) Run(deadline time.Time) {
	l.ready <- struct{}{}

	for {
		if !time.Now().Before(deadline) {
			l.done <- Result{TimedOut: true}
			return
		}
		frame, err := l.link.NextFrame()
		if err != nil {
			l.done <- Result{Err: err}
			return
		}
		if frame != nil {
			l.done <- Result{Frame: frame}
			return
		}
		// NextFrame returned nil with no error: the link's own read
		// timeout elapsed before a frame arrived. Loop and recheck the
		// caller's deadline rather than treating this as Timeout.
	}
}
