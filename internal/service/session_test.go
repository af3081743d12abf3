package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"polyglot/internal/model"
	"polyglot/internal/service"
)

type fakeTimer struct {
	clock   *fakeClock
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) service.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Active returns the timers that are neither stopped nor fired.
func (c *fakeClock) Active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var active []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			active = append(active, t)
		}
	}
	return active
}

// FireAll runs every active timer and returns how many fired.
func (c *fakeClock) FireAll() int {
	active := c.Active()
	c.mu.Lock()
	for _, t := range active {
		t.fired = true
	}
	c.mu.Unlock()
	for _, t := range active {
		t.f()
	}
	return len(active)
}

func (c *fakeClock) options() service.SessionOptions {
	return service.SessionOptions{AfterFunc: c.AfterFunc, Now: c.Now}
}

type translateReply struct {
	result *model.TranslationResult
	err    error
}

type heldCall struct {
	text  string
	reply chan translateReply
}

// heldTranslator blocks every call until the test replies to it. It ignores
// context cancellation, like a provider that keeps going after the caller
// has lost interest.
type heldTranslator struct {
	started chan *heldCall
}

func newHeldTranslator() *heldTranslator {
	return &heldTranslator{started: make(chan *heldCall, 16)}
}

func (h *heldTranslator) Translate(_ context.Context, text string) (*model.TranslationResult, error) {
	call := &heldCall{text: text, reply: make(chan translateReply, 1)}
	h.started <- call
	r := <-call.reply
	return r.result, r.err
}

func (h *heldTranslator) next(t *testing.T) *heldCall {
	t.Helper()
	select {
	case call := <-h.started:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a translation call")
		return nil
	}
}

// recordingTranslator answers at once and records what it was asked.
type recordingTranslator struct {
	mu    sync.Mutex
	calls []string
	fn    func(text string) (*model.TranslationResult, error)
}

func (r *recordingTranslator) Translate(_ context.Context, text string) (*model.TranslationResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, text)
	fn := r.fn
	r.mu.Unlock()
	if fn == nil {
		return englishResult(text), nil
	}
	return fn(text)
}

func (r *recordingTranslator) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func englishResult(text string) *model.TranslationResult {
	return &model.TranslationResult{
		SourceLanguage:     model.English,
		English:            text,
		Japanese:           "ja:" + text,
		TraditionalChinese: "zh:" + text,
		Korean:             "ko:" + text,
	}
}

func settle(t *testing.T, s *service.Session) model.LifecycleState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := s.Settled(ctx)
	require.NoError(t, err, "session should settle")
	return state
}

func TestSession_StartsIdle(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())

	state := s.State()
	require.Equal(t, model.StatusIdle, state.Status)
	require.Nil(t, state.Result)
	require.Nil(t, state.Error)
	require.Equal(t, int64(1), s.ID())
}

func TestSession_UsesDefaultDelay(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())

	s.OnInputChanged("hello")
	active := clock.Active()
	require.Len(t, active, 1)
	require.Equal(t, service.DefaultDebounceDelay, active[0].delay)
	require.Equal(t, 500*time.Millisecond, active[0].delay)
}

func TestSession_UsesConfiguredDelay(t *testing.T) {
	clock := newFakeClock()
	opts := clock.options()
	opts.Delay = 1200 * time.Millisecond
	s := service.NewSession(1, &recordingTranslator{}, opts)

	s.OnInputChanged("hello")
	active := clock.Active()
	require.Len(t, active, 1)
	require.Equal(t, 1200*time.Millisecond, active[0].delay)
}

func TestSession_CoalescesRapidInput(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{}
	s := service.NewSession(1, translator, clock.options())

	for _, text := range []string{"h", "he", "hel", "hell", "hello"} {
		s.OnInputChanged(text)
	}
	require.Len(t, clock.Active(), 1, "only the last input should stay scheduled")
	require.Equal(t, model.StatusIdle, s.State().Status, "nothing fires before the delay")

	require.Equal(t, 1, clock.FireAll())
	state := settle(t, s)

	require.Equal(t, []string{"hello"}, translator.Calls())
	require.Equal(t, model.StatusSucceeded, state.Status)
	require.Equal(t, "hello", state.Text)
	require.NotNil(t, state.Result)
	require.Equal(t, model.English, state.Result.SourceLanguage)
	require.Equal(t, "ja:hello", state.Result.Japanese)
}

func TestSession_BlankInputReturnsToIdle(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	s.OnInputChanged("   \n\t")

	require.Empty(t, clock.Active(), "blank input cancels the scheduled call")
	require.Equal(t, 0, clock.FireAll())
	require.Empty(t, translator.Calls())

	state := s.State()
	require.Equal(t, model.StatusIdle, state.Status)
	require.Nil(t, state.Result)
	require.Nil(t, state.Error)
}

func TestSession_BlankInputClearsPreviousResult(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	require.Equal(t, model.StatusSucceeded, settle(t, s).Status)

	s.OnInputChanged("")
	state := s.State()
	require.Equal(t, model.StatusIdle, state.Status)
	require.Nil(t, state.Result)
}

func TestSession_PendingWhileInFlight(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	call := translator.next(t)
	require.Equal(t, "hello", call.text)

	state := s.State()
	require.Equal(t, model.StatusPending, state.Status)
	require.Nil(t, state.Result)
	require.Nil(t, state.Error)

	call.reply <- translateReply{result: englishResult("hello")}
	require.Equal(t, model.StatusSucceeded, settle(t, s).Status)
}

func TestSession_LatestInputWinsOverLateResult(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("first")
	clock.FireAll()
	first := translator.next(t)

	s.OnInputChanged("second")
	clock.FireAll()
	second := translator.next(t)

	// The newer call finishes first; the older one arrives late.
	second.reply <- translateReply{result: englishResult("second")}
	state := settle(t, s)
	require.Equal(t, "second", state.Text)
	require.Equal(t, "second", state.Result.English)

	first.reply <- translateReply{result: englishResult("first")}
	require.Never(t, func() bool {
		return s.State().Text != "second"
	}, 100*time.Millisecond, 5*time.Millisecond, "late result must be dropped")
}

func TestSession_StaleResultDuringPendingIsDropped(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("first")
	clock.FireAll()
	first := translator.next(t)

	s.OnInputChanged("second")
	first.reply <- translateReply{err: errors.New("boom")}

	require.Never(t, func() bool {
		return s.State().Status == model.StatusFailed
	}, 100*time.Millisecond, 5*time.Millisecond, "superseded failure must not surface")

	clock.FireAll()
	second := translator.next(t)
	second.reply <- translateReply{result: englishResult("second")}

	state := settle(t, s)
	require.Equal(t, model.StatusSucceeded, state.Status)
	require.Equal(t, "second", state.Text)
}

func TestSession_FailureClearsResult(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	require.Equal(t, model.StatusSucceeded, settle(t, s).Status)

	translator.fn = func(string) (*model.TranslationResult, error) {
		return nil, &service.ServiceError{Kind: service.CommunicationFailure, Err: errors.New("connection refused")}
	}
	s.OnInputChanged("hello again")
	clock.FireAll()

	state := settle(t, s)
	require.Equal(t, model.StatusFailed, state.Status)
	require.Nil(t, state.Result, "a failure never carries the previous result")
	require.NotNil(t, state.Error)
	require.Equal(t, "communication_failure", state.Error.Kind)
	require.Equal(t, "Failed to get translation. Please check your API key and try again.", state.Error.Message)
}

func TestSession_InvalidShapeFailure(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{fn: func(string) (*model.TranslationResult, error) {
		return nil, &service.ServiceError{Kind: service.InvalidResponseShape, Err: errors.New("missing field")}
	}}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()

	state := settle(t, s)
	require.Equal(t, model.StatusFailed, state.Status)
	require.Equal(t, "invalid_response_shape", state.Error.Kind)
}

func TestSession_UntypedErrorIsCommunicationFailure(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{fn: func(string) (*model.TranslationResult, error) {
		return nil, context.DeadlineExceeded
	}}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()

	state := settle(t, s)
	require.Equal(t, model.StatusFailed, state.Status)
	require.Equal(t, "communication_failure", state.Error.Kind)
}

func TestSession_RetryAfterFailure(t *testing.T) {
	clock := newFakeClock()
	fail := true
	translator := &recordingTranslator{}
	translator.fn = func(text string) (*model.TranslationResult, error) {
		if fail {
			return nil, errors.New("down")
		}
		return englishResult(text), nil
	}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	require.Equal(t, model.StatusFailed, settle(t, s).Status)

	translator.mu.Lock()
	fail = false
	translator.mu.Unlock()

	s.OnInputChanged("hello!")
	clock.FireAll()
	state := settle(t, s)
	require.Equal(t, model.StatusSucceeded, state.Status)
	require.Nil(t, state.Error)
}

func TestSession_Flush(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{}
	s := service.NewSession(1, translator, clock.options())

	require.False(t, s.Flush(), "nothing scheduled yet")

	s.OnInputChanged("hello")
	require.True(t, s.Flush())
	require.False(t, s.Flush(), "flush consumes the schedule")

	state := settle(t, s)
	require.Equal(t, model.StatusSucceeded, state.Status)

	require.Equal(t, 0, clock.FireAll(), "flushed timer is stopped")
	require.Equal(t, []string{"hello"}, translator.Calls())
}

func TestSession_TimerAfterFlushDoesNotFireTwice(t *testing.T) {
	clock := newFakeClock()
	translator := &recordingTranslator{}
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	timer := clock.Active()[0]
	require.True(t, s.Flush())
	settle(t, s)

	// A timer that already started running when Flush stopped it.
	timer.f()
	require.Equal(t, []string{"hello"}, translator.Calls())
}

func TestSession_SubscribeReceivesLatestState(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	initial := <-updates
	require.Equal(t, model.StatusIdle, initial.Status)

	s.OnInputChanged("hello")
	clock.FireAll()
	settle(t, s)

	latest := <-updates
	require.Equal(t, model.StatusSucceeded, latest.Status)
	require.Equal(t, "hello", latest.Text)
}

func TestSession_UnsubscribeClosesChannel(t *testing.T) {
	s := service.NewSession(1, &recordingTranslator{}, newFakeClock().options())

	updates, unsubscribe := s.Subscribe()
	<-updates
	unsubscribe()
	unsubscribe()

	_, open := <-updates
	require.False(t, open)
}

func TestSession_SettledHonorsContext(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	call := translator.next(t)
	defer func() { call.reply <- translateReply{err: errors.New("done")} }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	state, err := s.Settled(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, model.StatusPending, state.Status)
}

func TestSession_SettledWaitsForScheduledInput(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())

	s.OnInputChanged("hello")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Settled(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded, "idle with a scheduled call is not settled")
}

func TestSession_Close(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	updates, _ := s.Subscribe()
	<-updates

	s.OnInputChanged("hello")
	clock.FireAll()
	call := translator.next(t)

	s.Close()
	s.Close()

	_, open := <-updates
	require.False(t, open, "close ends subscriptions")

	_, err := s.Settled(context.Background())
	require.ErrorIs(t, err, service.ErrClosed)

	call.reply <- translateReply{result: englishResult("hello")}
	require.Never(t, func() bool {
		return s.State().Status != model.StatusPending
	}, 50*time.Millisecond, 5*time.Millisecond, "results after close are dropped")

	s.OnInputChanged("ignored")
	require.Empty(t, clock.Active())
	require.False(t, s.Flush())
}

func TestSession_LastActivity(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())
	created := s.LastActivity()

	clock.Advance(time.Minute)
	s.OnInputChanged("hello")
	require.Equal(t, created.Add(time.Minute), s.LastActivity())
}
