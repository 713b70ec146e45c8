package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/protocol"
)

// PlanRequest optionally carries trip parameters.
type PlanRequest struct {
	Trip *domain.TripParameters `json:"trip,omitempty"`
}

// PlanSessionTrip plans the session's trip, or the one in the body.
// POST /v1/sessions/:session_id/itinerary
func (h *Handler) PlanSessionTrip(c echo.Context) error {
	var req PlanRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, protocol.ErrorCodeInvalidMessage, "invalid request body")
		}
	}

	it, err := h.service.PlanTrip(c.Request().Context(), c.Param("session_id"), req.Trip)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}

// PlanItinerary plans a trip without a session.
// POST /v1/itineraries
func (h *Handler) PlanItinerary(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, protocol.ErrorCodeInvalidMessage, "invalid request body")
	}
	if req.Trip == nil {
		return errorJSON(c, http.StatusBadRequest, protocol.ErrorCodeInvalidMessage, "trip is required")
	}

	it, err := h.service.PlanItinerary(c.Request().Context(), *req.Trip)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}
