/*
Package chat contains the core logic of the relay: live WebSocket
connections, the presence registry, and the event fan-out between them.

This file defines the Client struct, representing an active WebSocket
connection. It manages the connection's lifecycle, the message
communication loops (ReadPump and WritePump), and dispatch of inbound
protocol events to the Hub.
*/
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/errs"
	"gemchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// maximum allowed size (in bytes) for chat message content.
	MaxContentBytes = 5000
)

// Client struct represents an active WebSocket connection and the
// identity it carries, if any.
type Client struct {
	// the hub the client is registered with.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// identity resolved at connect time; nil for anonymous connections.
	// The identity never changes for the lifetime of the connection.
	identity *user.User

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance. A nil
// identity means the connection is anonymous.
func NewClient(hub *Hub, wsConn *websocket.Conn, identity *user.User) *Client {
	username := "anonymous"
	if identity != nil {
		username = identity.Username
	}

	clientLogger := logx.Logger().With().
		Str("username", username).
		Logger()

	return &Client{
		hub:      hub,
		conn:     wsConn,
		identity: identity,
		send:     make(chan []byte, 256),
		logger:   clientLogger,
	}
}

// isAuthenticated reports whether the connection carries an identity.
func (c *Client) isAuthenticated() bool {
	return c.identity != nil
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), event parsing, and performs cleanup
// upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the
// client's ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	// notify the hub to unregister the client
	select {
	case c.hub.unregister <- c:
	default:
		c.logger.Warn().Msg("Hub unregister channel blocked. Connection cleanup still proceeding.")
	}

	// close the connection
	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent handles raw byte messages received from the
// client. Malformed or unsupported events are dropped; they are never
// fatal to the connection.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var event Event

	if err := json.Unmarshal(messageBytes, &event); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch event.Type {
	case TypeRequestUsers:
		c.hub.handleRequestUsers(c)

	case TypeRequestMessages:
		c.hub.handleRequestMessages(c)

	case TypePostMessage:
		c.hub.handlePostMessage(c, event.Payload)

	case TypeInvite:
		c.hub.handleInvite(c, event.Payload)

	case TypeGameStart:
		c.hub.handleGameStart(c, event.Payload)

	case TypeGemUpdate:
		c.hub.handleGemUpdate(c, event.Payload)

	default:
		c.logger.Warn().Str("event_type", string(event.Type)).Msg("Client sent unsupported event type")
	}
}

// WritePump handles writing messages from the Client.send channel to
// the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendEvent marshals an event and attempts to queue it on the client's
// send channel.
func (c *Client) sendEvent(eventType EventType, payload any) error {
	messageBytes, err := NewEvent(eventType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Error marshaling event for client")
		return err
	}

	return c.queueMessage(messageBytes)
}

// queueMessage attempts to place already-marshaled bytes on the send
// channel without blocking.
func (c *Client) queueMessage(messageBytes []byte) error {
	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return fmt.Errorf("client send queue full")
	}
}

// SendError constructs and sends an error event to the client.
func (c *Client) SendError(err error) {
	var code int
	var message string

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
	} else {
		code = errs.ErrUnknown
		message = fmt.Sprintf("Internal server error: %v", err)
	}

	errorPayload := ErrorPayload{
		Code:    code,
		Message: message,
	}

	if sendErr := c.sendEvent(TypeError, errorPayload); sendErr != nil {
		c.logger.Error().Err(sendErr).Msg("Failed to queue error event")
	}
}
