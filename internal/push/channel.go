// Package push wraps the websocket push transport: one connection per chat
// session, room-scoped delivery keyed by conversation id.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freedayhq/freeday-chat/internal/constants"
	"github.com/freedayhq/freeday-chat/internal/core"
)

// ErrClosed is returned when operating on a closed channel.
var ErrClosed = errors.New("push channel closed")

// ErrNotConnected is returned when sending while disconnected.
var ErrNotConnected = errors.New("push channel not connected")

// Wire event names, shared with the backend.
const (
	eventJoinRoom = "joinRoom"
	eventSend     = "message.send"
	eventReceive  = "message.receive"
)

// envelope is the framing for every message on the socket.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinPayload struct {
	ConversationID string `json:"conversationId"`
}

type sendPayload struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

type receivePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Channel is a core.Transport over a websocket. It is safe for concurrent
// use; writes are serialized and the read loop runs on its own goroutine.
// The connection is owned by the chat session for its whole lifetime;
// conversation views consume it but never create or close it.
type Channel struct {
	url       string
	token     string
	sessionID string

	mu        sync.Mutex
	conn      *websocket.Conn
	closed    bool
	onMessage func(core.Message)
	onDown    func(error)
}

// New creates a push channel for the given websocket URL and auth token.
func New(url, token string) *Channel {
	return &Channel{
		url:       url,
		token:     token,
		sessionID: uuid.NewString(),
	}
}

// OnMessage registers the single inbound-message handler. The handler routes
// by conversation id; the transport does not filter by active conversation.
func (c *Channel) OnMessage(handler func(core.Message)) {
	c.mu.Lock()
	c.onMessage = handler
	c.mu.Unlock()
}

// OnDown registers the handler invoked when the connection drops.
func (c *Channel) OnDown(handler func(error)) {
	c.mu.Lock()
	c.onDown = handler
	c.mu.Unlock()
}

// Connect establishes the transport. It replaces any previous connection,
// so it doubles as reconnect.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: constants.DialTimeout}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	log.Info().Str("session", c.sessionID).Msg("push channel connected")
	go c.readLoop(conn)
	go c.pingLoop(conn)
	return nil
}

// JoinRoom subscribes this session to a conversation's events. Called once
// per conversation activation; the server scopes membership to the session,
// so no explicit leave is needed.
func (c *Channel) JoinRoom(conversationID string) error {
	payload, err := json.Marshal(joinPayload{ConversationID: conversationID})
	if err != nil {
		return err
	}
	return c.write(envelope{Event: eventJoinRoom, Payload: payload})
}

// Send emits an outbound message, fire-and-forget: no application-level ack
// is expected. Delivery is confirmed only by the echo on the inbound stream.
func (c *Channel) Send(conversationID, content string) error {
	payload, err := json.Marshal(sendPayload{ConversationID: conversationID, Content: content})
	if err != nil {
		return err
	}
	return c.write(envelope{Event: eventSend, Payload: payload})
}

// Close tears the channel down for good.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Channel) write(env envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}

	c.conn.SetWriteDeadline(time.Now().Add(constants.WriteTimeout))
	return c.conn.WriteJSON(env)
}

// readLoop delivers inbound events until the connection dies. Malformed
// events are dropped, not propagated.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.handleDisconnect(conn, err)
			return
		}

		if env.Event != eventReceive {
			log.Debug().Str("event", env.Event).Msg("ignoring unexpected push event")
			continue
		}

		var payload receivePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			log.Debug().Err(err).Msg("dropping malformed push event")
			continue
		}
		if payload.ConversationID == "" {
			log.Debug().Msg("dropping push event without conversation id")
			continue
		}

		c.mu.Lock()
		handler := c.onMessage
		c.mu.Unlock()
		if handler != nil {
			handler(core.Message{
				ID:             payload.ID,
				ConversationID: payload.ConversationID,
				SenderID:       payload.SenderID,
				Content:        payload.Content,
				CreatedAt:      payload.CreatedAt,
			})
		}
	}
}

// pingLoop keeps idle connections alive. It stops as soon as the connection
// it was started for is gone.
func (c *Channel) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(constants.PingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		current := c.conn
		c.mu.Unlock()
		if current != conn {
			return
		}

		deadline := time.Now().Add(constants.WriteTimeout)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
	}
}

// handleDisconnect reports a dropped connection exactly once per connection,
// staying quiet when the drop was a deliberate Close or a reconnect swap.
func (c *Channel) handleDisconnect(conn *websocket.Conn, err error) {
	c.mu.Lock()
	deliberate := c.closed || c.conn != conn
	if c.conn == conn {
		c.conn = nil
	}
	handler := c.onDown
	c.mu.Unlock()

	if deliberate {
		return
	}

	log.Warn().Err(err).Str("session", c.sessionID).Msg("push channel disconnected")
	if handler != nil {
		handler(err)
	}
}
