package animate

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/observability"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// DefaultInterval is the time between two steps.
const DefaultInterval = time.Second

// Options configures an [Animator].
type Options struct {
	Interval  time.Duration
	Palette   Palette
	NewTicker TickerFunc
	Logger    *log.Logger
}

// Option mutates [Options].
type Option func(*Options)

// WithInterval sets the time between steps.
func WithInterval(d time.Duration) Option { return func(o *Options) { o.Interval = d } }

// WithPalette sets the fills used for visited and active nodes.
func WithPalette(p Palette) Option { return func(o *Options) { o.Palette = p } }

// WithTicker replaces the ticker factory.
func WithTicker(fn TickerFunc) Option { return func(o *Options) { o.NewTicker = fn } }

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option { return func(o *Options) { o.Logger = l } }

func (o *Options) setDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Palette.Active == "" {
		o.Palette = DefaultPalette()
	}
	if o.NewTicker == nil {
		o.NewTicker = NewTimeTicker
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Animator runs one highlight session at a time on a surface.
type Animator struct {
	surface *diagram.Surface
	opts    Options

	mu      sync.Mutex
	current *Session
}

// New returns an animator painting on surface.
func New(surface *diagram.Surface, opts ...Option) *Animator {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.setDefaults()
	return &Animator{surface: surface, opts: o}
}

// Animate cancels the running session, waits for it to stop, and starts a
// new one over path. An empty path completes immediately without painting.
func (a *Animator) Animate(path []tree.NodeID) *Session {
	return a.AnimateContext(context.Background(), path)
}

// AnimateContext is [Animator.Animate] with a context. Cancelling ctx
// cancels the session.
func (a *Animator) AnimateContext(ctx context.Context, path []tree.NodeID) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if prev := a.current; prev != nil {
		prev.Cancel()
	}

	s := newSession(a, path)
	a.current = s
	s.start(ctx)
	return s
}

// Current returns the most recently started session, or nil.
func (a *Animator) Current() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Cancel stops the running session, if any.
func (a *Animator) Cancel() {
	a.mu.Lock()
	s := a.current
	a.mu.Unlock()
	if s != nil {
		s.Cancel()
	}
}

// Interval returns the configured step interval.
func (a *Animator) Interval() time.Duration { return a.opts.Interval }

// State is the lifecycle state of a [Session].
type State string

// Session states. Cancelled and Completed are terminal.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCancelled State = "cancelled"
	StateCompleted State = "completed"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == StateCancelled || s == StateCompleted }

// Session is one run of the animator over a path.
type Session struct {
	id      string
	path    []tree.NodeID
	surface *diagram.Surface
	palette Palette
	logger  *log.Logger
	newTick TickerFunc
	every   time.Duration

	stop       chan struct{}
	done       chan struct{}
	cancelOnce sync.Once

	mu    sync.Mutex
	state State
	step  int
	err   error
	prior map[tree.NodeID]string
}

func newSession(a *Animator, path []tree.NodeID) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		path:    append([]tree.NodeID(nil), path...),
		surface: a.surface,
		palette: a.opts.Palette,
		logger:  a.opts.Logger.With("session", id[:8]),
		newTick: a.opts.NewTicker,
		every:   a.opts.Interval,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		state:   StateIdle,
		step:    -1,
		prior:   make(map[tree.NodeID]string, len(path)),
	}
}

func (s *Session) start(ctx context.Context) {
	observability.Animation().OnAnimationStart(ctx, s.id, len(s.path))

	if len(s.path) == 0 {
		s.finish(ctx, StateCompleted, nil)
		close(s.done)
		return
	}

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	ticker := s.newTick(s.every)
	s.logger.Debug("animation started", "steps", len(s.path), "interval", s.every)
	go s.run(ctx, ticker)
}

func (s *Session) run(ctx context.Context, ticker Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	for k := 0; ; k++ {
		select {
		case <-s.stop:
			s.finish(ctx, StateCancelled, nil)
			return
		case <-ctx.Done():
			s.finish(ctx, StateCancelled, ctx.Err())
			return
		case <-ticker.C():
		}

		// A tick and a cancel can be ready together; cancel wins.
		select {
		case <-s.stop:
			s.finish(ctx, StateCancelled, nil)
			return
		default:
		}

		if k == len(s.path) {
			s.finish(ctx, StateCompleted, nil)
			return
		}
		if err := s.advance(ctx, k); err != nil {
			s.logger.Warn("animation aborted", "step", k, "node", s.path[k], "err", err)
			s.finish(ctx, StateCompleted, err)
			return
		}
	}
}

// advance repaints the previous node as visited and paints node k active.
func (s *Session) advance(ctx context.Context, k int) error {
	if k > 0 {
		prev := s.path[k-1]
		fill := s.palette.Fill(diagram.StateVisited, s.prior[prev], false)
		if err := s.surface.Paint(prev, diagram.StateVisited, fill); err != nil {
			return err
		}
	}

	cur := s.path[k]
	if _, seen := s.prior[cur]; !seen {
		base, ok := s.surface.BaseFill(cur)
		if ok {
			s.prior[cur] = base
		}
	}
	fill := s.palette.Fill(diagram.StateActive, s.prior[cur], k == len(s.path)-1)
	if err := s.surface.Paint(cur, diagram.StateActive, fill); err != nil {
		return err
	}

	s.mu.Lock()
	s.step = k
	s.mu.Unlock()

	s.logger.Debug("step", "index", k, "node", cur)
	observability.Animation().OnAnimationStep(ctx, s.id, k, string(cur))
	return nil
}

func (s *Session) finish(ctx context.Context, st State, err error) {
	s.mu.Lock()
	s.state = st
	s.err = err
	s.mu.Unlock()

	s.logger.Debug("animation finished", "state", st)
	observability.Animation().OnAnimationEnd(ctx, s.id, string(st), err)
}

// Cancel stops the session and waits until its goroutine has exited. No
// paint happens after Cancel returns. Cancelling a finished session is a
// no-op.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Wait blocks until the session finishes or ctx is done, and returns the
// session error, if any.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the session has reached a terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Path returns the path being animated.
func (s *Session) Path() []tree.NodeID { return append([]tree.NodeID(nil), s.path...) }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Step returns the index of the active node, or -1 before the first tick.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Err returns the error that ended the session: a NODE_NOT_FOUND error when
// a path node was missing from the diagram, or the context error when the
// session's context was cancelled.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
