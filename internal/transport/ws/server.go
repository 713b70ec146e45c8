// Package ws serves the chat protocol over WebSocket connections.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/tripmate/internal/config"
	"github.com/xiaot623/tripmate/internal/protocol"
	"github.com/xiaot623/tripmate/internal/service"
)

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *Hub
	svc      *service.Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *Hub, svc *service.Service, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		hub:    h,
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes mounts the WebSocket endpoint.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", s.HandleWebSocket)
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return nil
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", zap.String("conn_id", conn.ID), zap.Error(err))
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Warn("failed to write message", zap.String("conn_id", conn.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *Connection, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case protocol.TypeHello:
		s.handleHello(conn, data)
	case protocol.TypeChatMessage:
		s.handleChat(conn, data)
	case protocol.TypePlanTrip:
		s.handlePlanTrip(conn, data)
	case protocol.TypeNewTrip:
		s.handleNewTrip(conn, base)
	default:
		s.sendError(conn, base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// handleHello opens a session, or resumes the one named by session_id.
func (s *Server) handleHello(conn *Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHelloAck,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
		},
		Greeting: s.svc.Greeting(),
	}

	if msg.SessionID != "" {
		sess, err := s.svc.GetSession(msg.SessionID)
		if err != nil {
			code, _ := protocol.Classify(err)
			s.sendError(conn, msg.RequestID, code, err.Error())
			return
		}
		ack.SessionID = sess.ID
		ack.Transcript = sess.Transcript
	} else {
		ack.SessionID = s.svc.CreateSession().ID
	}

	s.hub.BindSession(conn, ack.SessionID)
	s.hub.SendJSONToConnection(conn, ack)

	s.logger.Info("hello handshake completed",
		zap.String("conn_id", conn.ID),
		zap.String("session_id", ack.SessionID),
		zap.Bool("resumed", msg.SessionID != ""))
}

// handleChat submits a user turn. The reply is broadcast to every
// connection of the session.
func (s *Server) handleChat(conn *Connection, data []byte) {
	var msg protocol.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid chat_message")
		return
	}

	sessionID := conn.SessionID()
	if sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	go func() {
		reply, err := s.svc.Chat(conn.ctx, sessionID, msg.Content)
		if err != nil {
			s.sendServiceError(conn, msg.RequestID, err)
			return
		}

		s.hub.BroadcastJSON(sessionID, protocol.AssistantMessage{
			BaseMessage: s.base(protocol.TypeAssistantMessage, msg.RequestID, sessionID),
			Content:     reply.Text,
			Unavailable: reply.Unavailable,
			Model:       reply.Model,
			TripReady:   reply.Trip != nil,
		})
		if reply.Trip != nil {
			s.hub.BroadcastJSON(sessionID, protocol.TripReadyMessage{
				BaseMessage: s.base(protocol.TypeTripReady, msg.RequestID, sessionID),
				Trip:        *reply.Trip,
			})
		}
	}()
}

// handlePlanTrip requests an itinerary for the session.
func (s *Server) handlePlanTrip(conn *Connection, data []byte) {
	var msg protocol.PlanTripMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid plan_trip message")
		return
	}

	sessionID := conn.SessionID()
	if sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	go func() {
		it, err := s.svc.PlanTrip(conn.ctx, sessionID, msg.Trip)
		if err != nil {
			s.sendServiceError(conn, msg.RequestID, err)
			return
		}
		s.hub.BroadcastJSON(sessionID, protocol.ItineraryMessage{
			BaseMessage: s.base(protocol.TypeItinerary, msg.RequestID, sessionID),
			Itinerary:   *it,
		})
	}()
}

// handleNewTrip resets the conversation and re-sends the greeting.
func (s *Server) handleNewTrip(conn *Connection, msg protocol.BaseMessage) {
	sessionID := conn.SessionID()
	if sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}

	if _, err := s.svc.ResetSession(sessionID); err != nil {
		s.sendServiceError(conn, msg.RequestID, err)
		return
	}
	s.hub.BroadcastJSON(sessionID, protocol.HelloAckMessage{
		BaseMessage: s.base(protocol.TypeHelloAck, msg.RequestID, sessionID),
		Greeting:    s.svc.Greeting(),
	})
}

func (s *Server) base(msgType, requestID, sessionID string) protocol.BaseMessage {
	return protocol.BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: sessionID,
	}
}

func (s *Server) sendServiceError(conn *Connection, requestID string, err error) {
	code, _ := protocol.Classify(err)
	if code == protocol.ErrorCodeInternalError {
		s.logger.Error("request failed", zap.String("conn_id", conn.ID), zap.Error(err))
	}
	s.sendError(conn, requestID, code, err.Error())
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *Connection, requestID, code, message string) {
	s.hub.SendJSONToConnection(conn, protocol.ErrorMessage{
		BaseMessage: s.base(protocol.TypeError, requestID, conn.SessionID()),
		Code:        code,
		Message:     message,
	})
}
