// Package protocol defines the WebSocket message protocol between the chat
// client and the relay.
package protocol

import "github.com/xiaot623/tripmate/internal/domain"

// Message types from client to relay
const (
	TypeHello       = "hello"
	TypeChatMessage = "chat_message"
	TypePlanTrip    = "plan_trip"
	TypeNewTrip     = "new_trip"
)

// Message types from relay to client
const (
	TypeHelloAck         = "hello_ack"
	TypeAssistantMessage = "assistant_message"
	TypeTripReady        = "trip_ready"
	TypeItinerary        = "itinerary"
	TypeError            = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage is sent by the client to open or resume a session.
type HelloMessage struct {
	BaseMessage
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage confirms the session. It is also sent after new_trip.
type HelloAckMessage struct {
	BaseMessage
	Greeting   string            `json:"greeting"`
	Transcript []domain.ChatTurn `json:"transcript,omitempty"`
}

// ChatMessage carries one user turn.
type ChatMessage struct {
	BaseMessage
	Content string `json:"content"`
}

// PlanTripMessage asks for an itinerary. Without Trip the parameters
// collected by the conversation are used.
type PlanTripMessage struct {
	BaseMessage
	Trip *domain.TripParameters `json:"trip,omitempty"`
}

// NewTripMessage resets the conversation.
type NewTripMessage struct {
	BaseMessage
}

// AssistantMessage is the assistant's visible reply. TripReady is set when a
// trip_ready message follows for the same request.
type AssistantMessage struct {
	BaseMessage
	Content     string `json:"content"`
	Unavailable bool   `json:"unavailable,omitempty"`
	Model       string `json:"model,omitempty"`
	TripReady   bool   `json:"trip_ready,omitempty"`
}

// TripReadyMessage announces that all trip parameters are known.
type TripReadyMessage struct {
	BaseMessage
	Trip domain.TripParameters `json:"trip"`
}

// ItineraryMessage delivers a generated plan.
type ItineraryMessage struct {
	BaseMessage
	Itinerary domain.Itinerary `json:"itinerary"`
}

// ErrorMessage is sent by the relay when a request fails.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
