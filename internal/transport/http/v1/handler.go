// Package v1 provides the version 1 HTTP handlers of the relay.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/protocol"
	"github.com/xiaot623/tripmate/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the v1 routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation API
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.POST("/v1/sessions/:session_id/messages", h.SendMessage)
	e.POST("/v1/sessions/:session_id/reset", h.ResetSession)

	// Itinerary API
	e.POST("/v1/sessions/:session_id/itinerary", h.PlanSessionTrip)
	e.POST("/v1/itineraries", h.PlanItinerary)

	e.GET("/v1/models", h.ListModels)
	e.GET("/health", h.Health)
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func (h *Handler) serviceError(c echo.Context, err error) error {
	code, status := protocol.Classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("request failed",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Error(err))
	}
	return errorJSON(c, status, code, err.Error())
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ListModels returns the fallback order, and the provider catalogue when
// ?provider=true.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	resp := map[string]interface{}{
		"models": h.service.Models(),
	}
	if c.QueryParam("provider") == "true" {
		available, err := h.service.ProviderModels(c.Request().Context())
		if err != nil {
			h.logger.Warn("failed to list provider models", zap.Error(err))
			return errorJSON(c, http.StatusBadGateway, protocol.ErrorCodeAssistantUnavailable, err.Error())
		}
		resp["provider_models"] = available
	}
	return c.JSON(http.StatusOK, resp)
}
