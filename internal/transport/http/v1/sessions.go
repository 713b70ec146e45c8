package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/tripmate/internal/domain"
	"github.com/xiaot623/tripmate/internal/protocol"
	"github.com/xiaot623/tripmate/internal/session"
)

// SessionResponse is the full state of a chat.
type SessionResponse struct {
	SessionID  string                 `json:"session_id"`
	Transcript []domain.ChatTurn      `json:"transcript"`
	Trip       *domain.TripParameters `json:"trip"`
	Itinerary  *domain.Itinerary      `json:"itinerary"`
	CreatedAt  int64                  `json:"created_at"`
	UpdatedAt  int64                  `json:"updated_at"`
}

func sessionResponse(sess *session.Session) SessionResponse {
	transcript := sess.Transcript
	if transcript == nil {
		transcript = []domain.ChatTurn{}
	}
	return SessionResponse{
		SessionID:  sess.ID,
		Transcript: transcript,
		Trip:       sess.Trip,
		Itinerary:  sess.Itinerary,
		CreatedAt:  sess.CreatedAt.UnixMilli(),
		UpdatedAt:  sess.UpdatedAt.UnixMilli(),
	}
}

// CreateSession opens a chat.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	sess := h.service.CreateSession()
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"session_id": sess.ID,
		"greeting":   h.service.Greeting(),
	})
}

// GetSession returns transcript, trip and itinerary.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	sess, err := h.service.GetSession(c.Param("session_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

// MessageRequest is a user turn.
type MessageRequest struct {
	Content string `json:"content"`
}

// SendMessage submits a user turn.
// POST /v1/sessions/:session_id/messages
func (h *Handler) SendMessage(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, protocol.ErrorCodeInvalidMessage, "invalid request body")
	}

	reply, err := h.service.Chat(c.Request().Context(), c.Param("session_id"), req.Content)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reply":       reply.Text,
		"trip":        reply.Trip,
		"unavailable": reply.Unavailable,
		"model":       reply.Model,
	})
}

// ResetSession starts a new trip.
// POST /v1/sessions/:session_id/reset
func (h *Handler) ResetSession(c echo.Context) error {
	sess, err := h.service.ResetSession(c.Param("session_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}
