package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// QuestionSource provides normalized question sets. *Fetcher implements it.
type QuestionSource interface {
	Fetch(ctx context.Context, opts domain.Options, token string) ([]domain.Question, error)
}

// Engine is the quiz state machine and the sole core API offered to the
// presentation layer. It owns the single session slot, the 1-based question
// cursor and the terminal flag, and mirrors every durable mutation to the
// store as one whole-session write.
//
// All mutations serialize on one mutex; timer callbacks take the same lock,
// so an answer always lands on the question index that was current when the
// user acted.
type Engine struct {
	store   Store
	tokens  TokenSource
	fetcher QuestionSource

	mu       sync.Mutex
	session  *domain.Session
	current  int
	terminal bool
	loading  bool
	lastErr  error
	timer    *Timer

	tickInterval time.Duration
}

func New(store Store, tokens TokenSource, fetcher QuestionSource) *Engine {
	return &Engine{
		store:        store,
		tokens:       tokens,
		fetcher:      fetcher,
		tickInterval: time.Second,
	}
}

// NewWithTickInterval is test-only for fast clocks.
func NewWithTickInterval(store Store, tokens TokenSource, fetcher QuestionSource, tick time.Duration) *Engine {
	e := New(store, tokens, fetcher)
	e.tickInterval = tick
	return e
}

// Initialize adopts a stored session when one exists, resuming the clock at
// its persisted remaining seconds; otherwise it fetches a fresh set using
// opts. A second call while one is in flight returns ErrBusy.
func (e *Engine) Initialize(ctx context.Context, opts domain.Options) error {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		return domain.ErrBusy
	}
	if session, ok := e.store.LoadSession(); ok {
		e.adoptLocked(session)
		e.mu.Unlock()
		return nil
	}
	e.loading = true
	e.mu.Unlock()

	return e.startFresh(ctx, opts)
}

// StartNew discards any stored session and starts a brand-new quiz with opts.
func (e *Engine) StartNew(ctx context.Context, opts domain.Options) error {
	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		return domain.ErrBusy
	}
	e.loading = true
	e.stopTimerLocked()
	e.session = nil
	e.terminal = false
	e.mu.Unlock()

	if err := e.store.ClearSession(); err != nil {
		e.finishLoading(err)
		return err
	}
	return e.startFresh(ctx, opts)
}

// Resume adopts the stored session, or reports ErrNoSession.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loading {
		return domain.ErrBusy
	}
	session, ok := e.store.LoadSession()
	if !ok {
		e.lastErr = domain.ErrNoSession
		return domain.ErrNoSession
	}
	e.adoptLocked(session)
	return nil
}

// startFresh runs the fetch outside the lock: no timer is running yet, and
// the loading flag keeps a second initialization out.
func (e *Engine) startFresh(ctx context.Context, opts domain.Options) error {
	err := e.fetchAndAdopt(ctx, opts)
	e.finishLoading(err)
	return err
}

func (e *Engine) fetchAndAdopt(ctx context.Context, opts domain.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := e.store.SaveOptions(opts); err != nil {
		return err
	}

	token, ok := e.tokens.Current()
	if !ok {
		var err error
		if token, err = e.tokens.Acquire(ctx); err != nil {
			return err
		}
	}

	questions, err := e.fetcher.Fetch(ctx, opts, token)
	if err != nil {
		return err
	}

	session := domain.Session{Questions: questions, RemainingSeconds: opts.TimerSeconds}
	if err := e.store.SaveSession(session); err != nil {
		return err
	}

	e.mu.Lock()
	e.adoptLocked(session)
	e.mu.Unlock()
	return nil
}

func (e *Engine) finishLoading(err error) {
	e.mu.Lock()
	e.loading = false
	e.lastErr = err
	e.mu.Unlock()
}

// adoptLocked installs session as the active quiz and starts its clock.
func (e *Engine) adoptLocked(session domain.Session) {
	e.stopTimerLocked()
	s := session
	e.session = &s
	e.current = 1
	e.lastErr = nil

	if s.RemainingSeconds <= 0 {
		// Persisted at zero: already over, nothing left to count down.
		e.terminal = true
		return
	}
	e.terminal = false

	var t *Timer
	t = NewTimer(
		func(remaining int) { e.handleTick(t, remaining) },
		func() { e.handleExpiry(t) },
	)
	t.interval = e.tickInterval
	e.timer = t
	t.Start(s.RemainingSeconds)
}

// RecordAnswer applies answer to the current question. First answer wins:
// an answered question and a terminal session both make this a no-op.
func (e *Engine) RecordAnswer(answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminal || e.session == nil {
		return
	}
	if e.current < 1 || e.current > len(e.session.Questions) {
		return
	}
	q := &e.session.Questions[e.current-1]
	if q.IsCorrect != nil {
		return
	}
	correct := answer == q.CorrectAnswer
	q.IsCorrect = &correct
	e.persistLocked()
}

// Advance moves the cursor by delta, clamped to the question range. The
// cursor is not persisted; only answers and the clock survive a reload.
func (e *Engine) Advance(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.goToLocked(e.current + delta)
}

// GoTo moves the cursor to index (1-based), clamped to the question range.
func (e *Engine) GoTo(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.goToLocked(index)
}

func (e *Engine) goToLocked(index int) {
	if e.session == nil || len(e.session.Questions) == 0 {
		return
	}
	if index < 1 {
		index = 1
	}
	if max := len(e.session.Questions); index > max {
		index = max
	}
	e.current = index
}

// Submit stops the clock and makes the session terminal. The stored session
// stays in place until Finish so a reload still shows the result.
func (e *Engine) Submit() domain.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.Stats{}
	}
	if !e.terminal {
		e.stopTimerLocked()
		e.terminal = true
		e.persistLocked()
	}
	return domain.ComputeStats(e.session.Questions)
}

// Finish clears the stored session slot. Options and token stay put.
func (e *Engine) Finish() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.session = nil
	e.terminal = false
	e.current = 0
	return e.store.ClearSession()
}

// Shutdown stops the clock without touching stored state. Mandatory teardown:
// a stray tick must never write to a slot the next owner has cleared.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
}

// handleTick mirrors the clock into the session. The timer identity check
// drops late ticks from a clock that has since been replaced.
func (e *Engine) handleTick(t *Timer, remaining int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != t || e.terminal || e.session == nil {
		return
	}
	e.session.RemainingSeconds = remaining
	e.persistLocked()
}

// handleExpiry is the clock-driven twin of Submit.
func (e *Engine) handleExpiry(t *Timer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != t || e.terminal || e.session == nil {
		return
	}
	e.session.RemainingSeconds = 0
	e.terminal = true
	e.timer = nil
	e.persistLocked()
}

// persistLocked writes the full current session through to the store. Always
// the complete, freshly mutated entity, so the last write carries both the
// latest answers and the latest clock value.
func (e *Engine) persistLocked() {
	if err := e.store.SaveSession(*e.session); err != nil {
		log.Printf("persist quiz session: %v", err)
	}
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Questions returns a snapshot of the question list.
func (e *Engine) Questions() []domain.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	questions := make([]domain.Question, len(e.session.Questions))
	copy(questions, e.session.Questions)
	for i := range questions {
		if questions[i].IsCorrect != nil {
			v := *questions[i].IsCorrect
			questions[i].IsCorrect = &v
		}
	}
	return questions
}

// Stats derives the aggregate counts for the current session.
func (e *Engine) Stats() domain.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.Stats{}
	}
	return domain.ComputeStats(e.session.Questions)
}

// CurrentIndex returns the 1-based cursor, 0 when no session is active.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// TimeRemaining returns the session's remaining seconds.
func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0
	}
	return e.session.RemainingSeconds
}

// IsTerminal reports whether answers are closed for the session.
func (e *Engine) IsTerminal() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.terminal
}

// IsLoading reports whether an initialization is in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastError returns the most recent initialization error, nil after success.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}
