package http

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"polyglot/internal/logger"
)

// reservedPrefixes are never answered by the front-end fallback.
var reservedPrefixes = []string{"/api", "/swagger", "/metrics"}

// registerStatic serves the built front-end from dir. Unknown paths fall back
// to index.html so client-side routes survive a reload.
func registerStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	indexPath := filepath.Join(dir, "index.html")
	info, err := os.Stat(indexPath)
	if err != nil || info.IsDir() {
		logger.Warn("static index missing", "module", "http", "action", "request", "resource", "http", "result", "skipped", "path", indexPath)
		return
	}

	logger.Info("static assets enabled", "module", "http", "action", "request", "resource", "http", "result", "ok", "dir", dir)

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:    dir,
		Index:   "index.html",
		HTML5:   true,
		Skipper: isReservedPath,
	}))
}

func isReservedPath(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range reservedPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
