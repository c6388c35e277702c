// Package api implements the HTTP boundary of the caching proxy on top of
// the core services.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dukkea/pokeapi-go/internal/conf"
	"github.com/dukkea/pokeapi-go/internal/datastore"
	"github.com/dukkea/pokeapi-go/internal/errors"
	"github.com/dukkea/pokeapi-go/internal/logging"
	"github.com/dukkea/pokeapi-go/internal/observability"
	"github.com/dukkea/pokeapi-go/internal/pokemon"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Service  *pokemon.Service

	metrics        *observability.Metrics
	apiLogger      *slog.Logger
	apiLevelVar    *slog.LevelVar
	apiLoggerClose func() error
	startTime      time.Time
}

// New creates a new API controller and registers its routes on the given
// Echo instance. The metrics instance may be nil.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, service *pokemon.Service, metrics *observability.Metrics) *Controller {
	c := &Controller{
		Echo:      e,
		DS:        ds,
		Settings:  settings,
		Service:   service,
		metrics:   metrics,
		startTime: time.Now(),
	}

	c.apiLevelVar = new(slog.LevelVar)
	c.apiLevelVar.Set(settings.LogLevel())

	apiLogger, closeFunc, err := logging.NewFileLogger("logs/api.log", "api", c.apiLevelVar)
	if err != nil {
		logging.Warn("Failed to initialize API file logger, using disabled logger", "error", err)
		apiLogger = logging.DisabledLogger("api", c.apiLevelVar)
		closeFunc = func() error { return nil }
	}
	c.apiLogger = apiLogger
	c.apiLoggerClose = closeFunc

	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	c.Echo.Use(middleware.Recover())
	c.Echo.Use(c.metricsMiddleware)

	c.Group = c.Echo.Group("/api/v1")

	c.Group.GET("/pokemon", c.GetPokemonList)
	c.Group.GET("/pokemon/:identifier", c.GetPokemonDetail)
	c.Group.PUT("/pokemon/:identifier", c.UpdatePokemon)
	c.Group.GET("/healthz", c.Healthz)

	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// metricsMiddleware records request counts and latencies per route.
func (c *Controller) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if c.metrics == nil {
			return next(ctx)
		}

		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		var httpErr *echo.HTTPError
		if err != nil && errors.As(err, &httpErr) {
			status = httpErr.Code
		}

		c.metrics.HTTP.RecordRequest(ctx.Request().Method, ctx.Path(), status, time.Since(start).Seconds())
		return err
	}
}

// Shutdown releases controller resources.
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			logging.Error("Failed to close API log file", "error", err)
		}
	}
}

// ErrorResponse is the JSON error payload returned by every failing
// endpoint.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	c.apiLogger.Error("API Error",
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP())

	return ctx.JSON(code, errorResp)
}

// handleServiceError maps core error categories onto HTTP status codes: a
// missing Pokemon is 404, a bad patch (invalid sprite type or unresolvable
// ability/type) is 400, everything else is 500.
func (c *Controller) handleServiceError(ctx echo.Context, err error, message string) error {
	switch {
	case errors.IsNotFound(err):
		return c.HandleError(ctx, err, message, http.StatusNotFound)
	case errors.IsValidation(err), errors.IsUpstream(err):
		return c.HandleError(ctx, err, message, http.StatusBadRequest)
	default:
		return c.HandleError(ctx, err, message, http.StatusInternalServerError)
	}
}

// Healthz reports process liveness.
func (c *Controller) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(c.startTime).Seconds()),
	})
}
