package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"polyglot/internal/logger"
	"polyglot/internal/metrics"
	"polyglot/internal/model"
)

// DefaultDebounceDelay is the quiescence period before a translation fires.
const DefaultDebounceDelay = 500 * time.Millisecond

// Timer is the cancellable handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SessionOptions configures a Session. Zero values select the defaults.
type SessionOptions struct {
	Delay     time.Duration
	AfterFunc AfterFunc
	Now       func() time.Time
}

// Session coalesces input changes into debounced translation calls and owns
// the resulting lifecycle state. Every input bumps a generation counter; a
// scheduled or in-flight translation only touches the state while its
// generation is still the newest one.
type Session struct {
	id         int64
	translator TranslationService
	delay      time.Duration
	afterFunc  AfterFunc
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	state          model.LifecycleState
	generation     uint64
	timer          Timer
	scheduled      bool
	scheduledText  string
	cancelInFlight context.CancelFunc
	lastActivity   time.Time
	closed         bool
	subscribers    map[int]chan model.LifecycleState
	nextSubscriber int
}

// NewSession creates an idle session.
func NewSession(id int64, translator TranslationService, opts SessionOptions) *Session {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDebounceDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := opts.Now()
	return &Session{
		id:           id,
		translator:   translator,
		delay:        opts.Delay,
		afterFunc:    opts.AfterFunc,
		now:          opts.Now,
		ctx:          ctx,
		cancel:       cancel,
		state:        model.LifecycleState{Status: model.StatusIdle, UpdatedAt: now},
		lastActivity: now,
		subscribers:  make(map[int]chan model.LifecycleState),
	}
}

// ID returns the session identifier.
func (s *Session) ID() int64 {
	return s.id
}

// State returns a snapshot of the lifecycle state.
func (s *Session) State() model.LifecycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity returns when the session last received input.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// OnInputChanged handles a new input value. Blank input returns the session
// to idle at once; anything else (re)schedules a translation after the
// debounce delay. Any older scheduled or in-flight translation is superseded.
func (s *Session) OnInputChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.generation++
	gen := s.generation
	s.lastActivity = s.now()

	if s.scheduled {
		s.timer.Stop()
		s.timer = nil
		s.scheduled = false
		metrics.DebounceSuperseded()
	}
	if s.cancelInFlight != nil {
		s.cancelInFlight()
		s.cancelInFlight = nil
	}

	if strings.TrimSpace(text) == "" {
		s.scheduledText = ""
		s.setStateLocked(model.LifecycleState{
			Status:     model.StatusIdle,
			Text:       text,
			Generation: gen,
		})
		return
	}

	s.scheduled = true
	s.scheduledText = text
	s.timer = s.afterFunc(s.delay, func() { s.fire(gen, text) })
}

// Flush fires the scheduled translation immediately. It reports whether one
// was scheduled.
func (s *Session) Flush() bool {
	s.mu.Lock()
	if s.closed || !s.scheduled {
		s.mu.Unlock()
		return false
	}
	s.timer.Stop()
	gen, text := s.generation, s.scheduledText
	s.mu.Unlock()

	s.fire(gen, text)
	return true
}

// fire moves the session to pending and starts the remote call, unless a
// newer input has arrived since gen was scheduled or the schedule was
// already consumed by Flush.
func (s *Session) fire(gen uint64, text string) {
	s.mu.Lock()
	if s.closed || !s.scheduled || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.scheduled = false
	s.scheduledText = ""

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelInFlight = cancel
	s.setStateLocked(model.LifecycleState{
		Status:     model.StatusPending,
		Text:       text,
		Generation: gen,
	})
	s.mu.Unlock()

	logger.Debug("session translation started", "module", "service", "action", "translate", "resource", "session", "result", "ok", "session_id", s.id, "generation", gen)

	go func() {
		defer cancel()
		result, err := s.translator.Translate(ctx, text)
		s.complete(gen, text, result, err)
	}()
}

// complete applies a finished translation if gen is still current.
func (s *Session) complete(gen uint64, text string, result *model.TranslationResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		logger.Debug("session result dropped after close", "module", "service", "action", "translate", "resource", "session", "result", "skipped", "session_id", s.id, "generation", gen)
		return
	}
	if gen != s.generation {
		metrics.StaleResult()
		logger.Debug("session stale result dropped", "module", "service", "action", "translate", "resource", "session", "result", "skipped", "session_id", s.id, "generation", gen, "current_generation", s.generation)
		return
	}
	s.cancelInFlight = nil

	if err != nil {
		kind := CommunicationFailure
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			kind = svcErr.Kind
		}
		s.setStateLocked(model.LifecycleState{
			Status:     model.StatusFailed,
			Text:       text,
			Error:      &model.LifecycleError{Kind: kind.String(), Message: failureMessage},
			Generation: gen,
		})
		return
	}

	s.setStateLocked(model.LifecycleState{
		Status:     model.StatusSucceeded,
		Text:       text,
		Result:     result,
		Generation: gen,
	})
}

// setStateLocked replaces the state and notifies subscribers. Each
// subscriber channel holds one snapshot; an unread older snapshot is
// replaced so a slow reader always ends up with the newest one.
func (s *Session) setStateLocked(state model.LifecycleState) {
	state.UpdatedAt = s.now()
	s.state = state
	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// Subscribe returns a channel that receives the current state immediately and
// every later state. The channel is closed by unsubscribe or Close.
func (s *Session) Subscribe() (<-chan model.LifecycleState, func()) {
	ch := make(chan model.LifecycleState, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = ch
	ch <- s.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Settled waits until no translation is scheduled or in flight for the
// latest input and returns that state.
func (s *Session) Settled(ctx context.Context) (model.LifecycleState, error) {
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for {
		if state, ok := s.settledState(); ok {
			return state, nil
		}
		select {
		case _, open := <-updates:
			if !open {
				return s.State(), ErrClosed
			}
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}
}

func (s *Session) settledState() (model.LifecycleState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := !s.scheduled && s.state.Settled() && s.state.Generation == s.generation
	return s.state, ok
}

// Close stops the debounce timer, abandons any in-flight call and closes all
// subscriber channels. Later input is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// closeIfIdle closes the session only if its last input came before cutoff.
// The check and the close happen under one lock so input arriving during a
// sweep keeps the session open.
func (s *Session) closeIfIdle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.lastActivity.Before(cutoff) {
		return false
	}
	s.closeLocked()
	return true
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	if s.scheduled {
		s.timer.Stop()
		s.timer = nil
		s.scheduled = false
	}
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}
