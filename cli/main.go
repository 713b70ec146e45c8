// Package main provides a terminal chat client for the trip planner relay.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/tripmate/internal/protocol"
)

// Client represents a WebSocket client.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	out       io.Writer
	pending   atomic.Bool
	writeMu   sync.Mutex
	lastType  string
	done      chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string, out io.Writer) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		out:  out,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) base(msgType string) protocol.BaseMessage {
	return protocol.BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		SessionID: c.sessionID,
	}
}

func (c *Client) writeJSON(msgType string, v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.lastType = msgType
	return c.conn.WriteJSON(v)
}

// lastSent returns the type of the most recent request.
func (c *Client) lastSent() string {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.lastType
}

// SendHello opens or resumes a session and waits for hello_ack.
func (c *Client) SendHello(sessionID string) error {
	c.sessionID = sessionID
	msg := protocol.HelloMessage{
		BaseMessage: c.base(protocol.TypeHello),
		ClientMeta: map[string]string{
			"client": "tripmate-cli",
		},
	}
	if err := c.writeJSON(protocol.TypeHello, msg); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}

	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}

	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != protocol.TypeHelloAck {
		return fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	var ack protocol.HelloAckMessage
	if err := json.Unmarshal(data, &ack); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	c.sessionID = ack.SessionID

	if len(ack.Transcript) > 0 {
		renderTranscript(c.out, ack.Transcript)
	} else {
		fmt.Fprintf(c.out, "Assistant: %s\n", ack.Greeting)
	}
	return nil
}

// SendChat submits a user turn.
func (c *Client) SendChat(content string) error {
	c.pending.Store(true)
	return c.writeJSON(protocol.TypeChatMessage, protocol.ChatMessage{
		BaseMessage: c.base(protocol.TypeChatMessage),
		Content:     content,
	})
}

// SendPlanTrip asks for the itinerary of the collected trip. Sending it again
// after a failure retries with the same parameters.
func (c *Client) SendPlanTrip() error {
	c.pending.Store(true)
	return c.writeJSON(protocol.TypePlanTrip, protocol.PlanTripMessage{BaseMessage: c.base(protocol.TypePlanTrip)})
}

// SendNewTrip resets the conversation.
func (c *Client) SendNewTrip() error {
	c.pending.Store(true)
	return c.writeJSON(protocol.TypeNewTrip, protocol.NewTripMessage{BaseMessage: c.base(protocol.TypeNewTrip)})
}

// Pending reports whether a request is awaiting its answer.
func (c *Client) Pending() bool {
	return c.pending.Load()
}

// ReadMessages reads and renders messages from the server until the
// connection closes.
func (c *Client) ReadMessages() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}
		if err := c.handle(data); err != nil {
			log.Printf("Handle error: %v", err)
		}
	}
}

func (c *Client) handle(data []byte) error {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	switch base.Type {
	case protocol.TypeHelloAck:
		var ack protocol.HelloAckMessage
		if err := json.Unmarshal(data, &ack); err != nil {
			return err
		}
		c.pending.Store(false)
		fmt.Fprintf(c.out, "\n--- new trip ---\nAssistant: %s\n", ack.Greeting)

	case protocol.TypeAssistantMessage:
		var msg protocol.AssistantMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		// trip_ready follows and sends plan_trip; stay pending until then.
		if !msg.TripReady {
			c.pending.Store(false)
		}
		fmt.Fprintf(c.out, "\nAssistant: %s\n", msg.Content)

	case protocol.TypeTripReady:
		var msg protocol.TripReadyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		renderTrip(c.out, msg.Trip)
		fmt.Fprintln(c.out, "Planning your itinerary...")
		return c.SendPlanTrip()

	case protocol.TypeItinerary:
		var msg protocol.ItineraryMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		c.pending.Store(false)
		renderItinerary(c.out, msg.Itinerary)

	case protocol.TypeError:
		var msg protocol.ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		c.pending.Store(false)
		fmt.Fprintf(c.out, "\n[error] %s: %s\n", msg.Code, msg.Message)
		if c.lastSent() == protocol.TypePlanTrip {
			fmt.Fprintln(c.out, "Type /plan to request the itinerary again.")
		}
	}
	return nil
}

// dispatch handles one line of input. It returns false when the user asked
// to quit.
func (c *Client) dispatch(line string) (bool, error) {
	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return true, nil
	case input == "/quit":
		fmt.Fprintln(c.out, "Bye!")
		return false, nil
	case c.Pending():
		fmt.Fprintln(c.out, "(still waiting for the last answer)")
		return true, nil
	case input == "/new":
		return true, c.SendNewTrip()
	case input == "/plan":
		return true, c.SendPlanTrip()
	}
	return true, c.SendChat(input)
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket server address")
	sessionID := flag.String("session", "", "Session ID to resume")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if err := client.SendHello(*sessionID); err != nil {
		log.Fatalf("Hello failed: %v", err)
	}

	fmt.Printf("Session: %s\n", client.sessionID)
	fmt.Println("Commands: /new to start a new trip, /plan to retry the itinerary, /quit to exit")
	fmt.Println()

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		case <-client.done:
			fmt.Println("Connection closed")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			more, err := client.dispatch(line)
			if err != nil {
				log.Printf("Send error: %v", err)
			}
			if !more {
				return
			}
		}
	}
}
