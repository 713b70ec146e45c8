// Package http provides the HTTP server implementation for the relay.
package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/logging"
	"github.com/xiaot623/tripmate/internal/service"
	v1 "github.com/xiaot623/tripmate/internal/transport/http/v1"
	"github.com/xiaot623/tripmate/internal/transport/ws"
)

// RequestTimeout bounds a single REST request.
const RequestTimeout = 60 * time.Second

// NewServer creates and configures the relay HTTP server: the v1 REST API
// and the WebSocket endpoint.
func NewServer(svc *service.Service, wsServer *ws.Server, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.CORS())
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Skipper: func(c echo.Context) bool { return c.Path() == "/ws" },
		Timeout: RequestTimeout,
	}))

	// Handlers
	v1Handler := v1.NewHandler(svc, logger)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	wsServer.RegisterRoutes(e)

	return e
}
