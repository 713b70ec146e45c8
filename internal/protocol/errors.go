package protocol

import (
	"errors"
	"net/http"

	"github.com/xiaot623/tripmate/internal/collector"
	"github.com/xiaot623/tripmate/internal/fallback"
	"github.com/xiaot623/tripmate/internal/itinerary"
	"github.com/xiaot623/tripmate/internal/service"
	"github.com/xiaot623/tripmate/internal/session"
)

// Error codes
const (
	ErrorCodeInvalidMessage       = "invalid_message"
	ErrorCodeSessionRequired      = "session_required"
	ErrorCodeSessionNotFound      = "session_not_found"
	ErrorCodeBusy                 = "busy"
	ErrorCodeEmptyInput           = "empty_input"
	ErrorCodeNoTrip               = "no_trip"
	ErrorCodeInvalidTrip          = "invalid_trip"
	ErrorCodeInvalidRange         = "invalid_range"
	ErrorCodeAssistantUnavailable = "assistant_unavailable"
	ErrorCodeItineraryParse       = "itinerary_parse"
	ErrorCodeInternalError        = "internal_error"
)

// Classify maps a service error to an error code and an HTTP status.
func Classify(err error) (string, int) {
	var (
		rangeErr    *itinerary.InvalidRangeError
		parseErr    *itinerary.ParseError
		exhausted   *fallback.AllModelsExhaustedError
		unavailable *collector.AssistantUnavailableError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return ErrorCodeSessionNotFound, http.StatusNotFound
	case errors.Is(err, session.ErrBusy):
		return ErrorCodeBusy, http.StatusConflict
	case errors.Is(err, collector.ErrEmptyInput):
		return ErrorCodeEmptyInput, http.StatusBadRequest
	case errors.Is(err, service.ErrNoTrip):
		return ErrorCodeNoTrip, http.StatusBadRequest
	case errors.Is(err, service.ErrIncompleteTrip):
		return ErrorCodeInvalidTrip, http.StatusBadRequest
	case errors.As(err, &rangeErr):
		return ErrorCodeInvalidRange, http.StatusBadRequest
	case errors.As(err, &parseErr):
		return ErrorCodeItineraryParse, http.StatusBadGateway
	case errors.As(err, &unavailable), errors.As(err, &exhausted):
		return ErrorCodeAssistantUnavailable, http.StatusBadGateway
	}
	return ErrorCodeInternalError, http.StatusInternalServerError
}
