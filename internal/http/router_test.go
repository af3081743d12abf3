package http_test

import (
	"bytes"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"polyglot/internal/handler"
	transport "polyglot/internal/http"
	"polyglot/internal/logger"
	"polyglot/internal/service"
	"polyglot/internal/service/mock"
)

func newRouter(t *testing.T, staticDir string) nethttp.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	sessions := service.NewSessionManager(mock.NewMockTranslationService(ctrl), service.SessionOptions{Delay: time.Hour}, time.Hour)
	t.Cleanup(sessions.CloseAll)

	return transport.NewRouter(transport.Handlers{
		Languages: handler.NewLanguageHandler(),
		Translate: handler.NewTranslateHandler(mock.NewMockTranslationService(ctrl)),
		Sessions:  handler.NewSessionHandler(sessions),
		Settings:  handler.NewSettingsHandler(mock.NewMockSettingsService(ctrl)),
	}, transport.RouterOptions{StaticDir: staticDir, CORSOrigins: []string{"http://localhost:5173"}})
}

func get(h nethttp.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_APIAndMetrics(t *testing.T) {
	r := newRouter(t, "")

	rec := get(r, "/api/languages")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Traditional Chinese")

	rec = get(r, "/metrics")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "polyglot_sessions_active")

	rec = get(r, "/nope")
	require.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	r := newRouter(t, "")

	rec := get(r, "/api/languages", "Origin", "http://localhost:5173")
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(r, "/api/languages", "Origin", "http://evil.example")
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_StaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>polyglot</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	r := newRouter(t, dir)

	rec := get(r, "/")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "polyglot")

	rec = get(r, "/app.js")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "console.log")

	rec = get(r, "/settings")
	require.Equal(t, nethttp.StatusOK, rec.Code, "client routes fall back to index")
	require.Contains(t, rec.Body.String(), "polyglot")

	rec = get(r, "/api/unknown")
	require.Equal(t, nethttp.StatusNotFound, rec.Code, "api paths never fall back")
}

func TestRequestLoggerMiddleware_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWriter(&buf, slog.LevelDebug)
	t.Cleanup(func() { logger.InitWriter(os.Stderr, slog.LevelInfo) })

	r := newRouter(t, "")
	get(r, "/api/languages")
	get(r, "/api/sessions/123")

	out := buf.String()
	require.Contains(t, out, "level=debug msg=\"http request\" module=http action=request resource=http result=ok method=GET path=/api/languages status_code=200")
	require.Contains(t, out, "level=warn msg=\"http request\" module=http action=request resource=http result=failed method=GET path=/api/sessions/123 status_code=404")
}
