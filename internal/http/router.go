package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "polyglot/docs"
	"polyglot/internal/handler"
	"polyglot/internal/metrics"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Languages *handler.LanguageHandler
	Translate *handler.TranslateHandler
	Sessions  *handler.SessionHandler
	Settings  *handler.SettingsHandler
}

// RouterOptions configures the parts of the router outside /api.
type RouterOptions struct {
	StaticDir   string
	CORSOrigins []string
}

func NewRouter(h Handlers, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())
	if len(opts.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		}))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	h.Languages.RegisterRoutes(api)
	h.Translate.RegisterRoutes(api)
	h.Sessions.RegisterRoutes(api)
	h.Settings.RegisterRoutes(api)

	registerStatic(e, opts.StaticDir)

	return e
}
