package service_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"polyglot/internal/logger"
	"polyglot/internal/model"
	"polyglot/internal/service"
	"polyglot/internal/service/ai"
)

const requestsTotal = "polyglot_translation_requests_total"

func TestSession_SupersededCallIsNotAFailure(t *testing.T) {
	logs := &logBuffer{}
	logger.InitWriter(logs, slog.LevelDebug)
	t.Cleanup(func() { logger.InitWriter(os.Stderr, slog.LevelInfo) })

	p := newMockProvider(t)
	started := make(chan struct{})
	gomock.InOrder(
		p.EXPECT().
			CompleteJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _, _ string, _ ai.JSONSchema) (string, error) {
				close(started)
				<-ctx.Done()
				return "", ctx.Err()
			}),
		p.EXPECT().
			CompleteJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"sourceLanguage":"English","japanese":"こんにちは世界","traditionalChinese":"你好世界","english":"model","korean":"안녕 세상"}`, nil),
	)

	failures := map[string]string{"provider": "mock", "outcome": "communication_failure"}
	cancelled := map[string]string{"provider": "mock", "outcome": "cancelled"}
	failuresBefore := counterValue(t, requestsTotal, failures)
	cancelledBefore := counterValue(t, requestsTotal, cancelled)

	clock := newFakeClock()
	s := service.NewSession(1, newTranslationService(p), clock.options())
	defer s.Close()

	s.OnInputChanged("hello")
	clock.FireAll()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first translation did not start")
	}

	s.OnInputChanged("hello world")
	clock.FireAll()

	state := settle(t, s)
	require.Equal(t, model.StatusSucceeded, state.Status)
	require.Equal(t, "hello world", state.Result.English)

	require.Eventually(t, func() bool {
		return counterValue(t, requestsTotal, cancelled) == cancelledBefore+1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, failuresBefore, counterValue(t, requestsTotal, failures))
	require.Contains(t, logs.String(), `msg="translation cancelled"`)
	require.NotContains(t, logs.String(), `msg="translation failed"`)
}

func TestTranslationService_TimeoutIsStillAFailure(t *testing.T) {
	p := newMockProvider(t)
	p.EXPECT().
		CompleteJSON(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string, _ ai.JSONSchema) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	failures := map[string]string{"provider": "mock", "outcome": "communication_failure"}
	before := counterValue(t, requestsTotal, failures)

	svc := service.NewTranslationService(ai.NewHolder(p), ai.NewRateLimiter(100), 20*time.Millisecond)
	_, err := svc.Translate(context.Background(), "hello")
	requireKind(t, err, service.CommunicationFailure)
	require.Equal(t, before+1, counterValue(t, requestsTotal, failures))
}

func TestSession_ResultAfterCloseIsNotCountedStale(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())

	s.OnInputChanged("hello")
	clock.FireAll()
	call := translator.next(t)

	before := counterValue(t, "polyglot_stale_results_total", nil)
	s.Close()
	call.reply <- translateReply{result: englishResult("hello")}

	require.Never(t, func() bool {
		return counterValue(t, "polyglot_stale_results_total", nil) != before
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestSession_SupersededResultIsCountedStale(t *testing.T) {
	clock := newFakeClock()
	translator := newHeldTranslator()
	s := service.NewSession(1, translator, clock.options())
	defer s.Close()

	s.OnInputChanged("first")
	clock.FireAll()
	first := translator.next(t)

	before := counterValue(t, "polyglot_stale_results_total", nil)
	s.OnInputChanged("second")
	first.reply <- translateReply{result: englishResult("first")}

	require.Eventually(t, func() bool {
		return counterValue(t, "polyglot_stale_results_total", nil) == before+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSession_CloseIfIdleKeepsFreshInput(t *testing.T) {
	clock := newFakeClock()
	s := service.NewSession(1, &recordingTranslator{}, clock.options())
	cutoff := clock.Now().Add(time.Minute)

	// Input lands after the sweep computed its cutoff.
	clock.Advance(2 * time.Minute)
	s.OnInputChanged("still typing")

	require.False(t, s.CloseIfIdleForTest(cutoff))
	require.True(t, s.Flush(), "session stays open")
	settle(t, s)

	require.True(t, s.CloseIfIdleForTest(clock.Now().Add(time.Second)))
	require.False(t, s.CloseIfIdleForTest(clock.Now().Add(time.Second)), "already closed")
	_, err := s.Settled(context.Background())
	require.ErrorIs(t, err, service.ErrClosed)
}
