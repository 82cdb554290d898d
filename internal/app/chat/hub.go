/*
Package chat contains the core logic of the relay: live WebSocket
connections, the presence registry, and the event fan-out between them.

This file defines the Hub, the single event loop that owns the set of
connected clients. It registers and unregisters connections, pairs
every join broadcast with a leave broadcast, and fans outbound events
out to the right audience. Inbound protocol events are dispatched from
the clients' read loops; the handlers only touch state that is safe to
share (the presence registry and the transcript store) and route all
fan-out through the hub's broadcast channel.
*/
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gemchat/internal/app/transcript"
	"gemchat/internal/pkg/errs"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/metrics"
)

const broadcastChannelBuffer = 1024

// outbound is one fan-out unit: pre-marshaled bytes plus an optional
// connection to skip.
type outbound struct {
	data    []byte
	exclude *Client
}

// Hub owns all live connections and the presence registry.
type Hub struct {
	// presence is the registry of currently-online identities.
	presence *Presence

	// transcript is the durable chat history.
	transcript transcript.Store

	// the set of currently registered connections. Only the Run loop
	// touches this map.
	clients map[*Client]struct{}

	// a buffered channel for outbound events to be fanned out.
	broadcast chan outbound

	// a channel for connections requesting to join.
	register chan *Client

	// a channel for connections requesting to leave.
	unregister chan *Client

	// used to signal the Hub to stop its Run loop.
	stopChan chan struct{}

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub creates a Hub backed by the given transcript store.
func NewHub(store transcript.Store) *Hub {
	hubLogger := logx.Logger().With().
		Str("component", "hub").
		Logger()

	return &Hub{
		presence:   NewPresence(),
		transcript: store,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, broadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		logger:     hubLogger,
	}
}

// Stop signals the Hub's Run loop to terminate.
func (h *Hub) Stop() {
	select {
	case <-h.stopChan:
	default:
		close(h.stopChan)
	}
}

// RegisterClient queues a connection for registration.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// Run starts the main event loop for the Hub. It handles connection
// registration, deregistration, and event fan-out. All mutation of the
// client set happens here, one event at a time.
func (h *Hub) Run() {
	defer func() {
		h.logger.Info().Msg("Hub Run loop finished.")

		for client := range h.clients {
			select {
			case <-client.send:
			default:
				close(client.send)
			}
		}
	}()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			metrics.ConnectionsTotal.Inc()

			h.logger.Info().
				Bool("authenticated", client.isAuthenticated()).
				Int("total_connections", len(h.clients)).
				Msg("Client registered.")

			if client.identity != nil {
				h.presence.Add(*client.identity)

				// everyone hears the join, the joining connection included
				data, err := NewEvent(TypeUserJoined, *client.identity)
				if err != nil {
					h.logger.Error().Err(err).Msg("Failed to build userJoined event.")
					continue
				}
				h.fanOut(data, nil)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}

			delete(h.clients, client)
			metrics.ConnectionsTotal.Dec()

			select {
			case <-client.send:
			default:
				close(client.send)
			}

			h.logger.Info().
				Bool("authenticated", client.isAuthenticated()).
				Int("total_connections", len(h.clients)).
				Msg("Client unregistered.")

			// anonymous connections come and go silently
			if client.identity != nil {
				h.presence.Remove(client.identity.Username)

				data, err := NewEvent(TypeUserLeft, *client.identity)
				if err != nil {
					h.logger.Error().Err(err).Msg("Failed to build userLeft event.")
					continue
				}
				h.fanOut(data, nil)
			}

		case out := <-h.broadcast:
			h.fanOut(out.data, out.exclude)

		case <-h.stopChan:
			h.logger.Info().Msg("Hub stop initiated.")
			return
		}
	}
}

// fanOut delivers pre-marshaled bytes to every registered connection
// except the excluded one. Clients whose send queue is full miss the
// event; their read loop handles the eventual disconnect.
func (h *Hub) fanOut(data []byte, exclude *Client) {
	for client := range h.clients {
		if client == exclude {
			continue
		}

		select {
		case client.send <- data:
		default:
			client.logger.Warn().Msg("Client send channel full during fan-out, dropping event.")
		}
	}
}

// enqueueBroadcast places an outbound event on the broadcast channel
// without blocking the caller.
func (h *Hub) enqueueBroadcast(data []byte, exclude *Client) {
	select {
	case h.broadcast <- outbound{data: data, exclude: exclude}:
	default:
		h.logger.Warn().Msg("Broadcast channel full, dropping event.")
	}
}

// handleRequestUsers replies to the requesting connection with the
// current presence snapshot. Anonymous connections are silently
// ignored.
func (h *Hub) handleRequestUsers(c *Client) {
	if !c.isAuthenticated() {
		c.logger.Warn().Msg("Anonymous client requested the user list, dropping.")
		return
	}

	_ = c.sendEvent(TypeUsers, h.presence.Snapshot())
}

// handleRequestMessages replies to the requesting connection with the
// full transcript. Anonymous connections may replay history.
func (h *Hub) handleRequestMessages(c *Client) {
	messages, err := h.transcript.ReadAll(context.Background())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read transcript for replay.")
		c.SendError(errs.NewError(errs.ErrTranscriptReadFailed))
		return
	}

	if messages == nil {
		messages = []transcript.Message{}
	}

	_ = c.sendEvent(TypeMessages, messages)
}

// handlePostMessage persists a chat message and broadcasts it to every
// connection. Anonymous posts and blank content are dropped. A
// persistence failure surfaces as an error event to the posting
// connection only.
func (h *Hub) handlePostMessage(c *Client, payloadBytes json.RawMessage) {
	if !c.isAuthenticated() {
		c.logger.Warn().Msg("Anonymous client tried to post a message, dropping.")
		metrics.MessagesTotal.WithLabelValues("dropped").Inc()
		return
	}

	var payload PostMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid postMessage payload.")
		metrics.MessagesTotal.WithLabelValues("dropped").Inc()
		return
	}

	if strings.TrimSpace(payload.Content) == "" {
		c.logger.Warn().Msg("Client posted blank content, dropping.")
		metrics.MessagesTotal.WithLabelValues("dropped").Inc()
		return
	}

	if len(payload.Content) > MaxContentBytes {
		metrics.MessagesTotal.WithLabelValues("dropped").Inc()
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	message, err := h.transcript.Append(context.Background(), *c.identity, payload.Content, time.Now())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to append message to transcript.")
		metrics.MessagesTotal.WithLabelValues("dropped").Inc()
		c.SendError(errs.NewError(errs.ErrTranscriptWriteFailed))
		return
	}

	metrics.MessagesTotal.WithLabelValues("posted").Inc()

	data, err := NewEvent(TypeNewMessage, message)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build newMessage event.")
		return
	}
	h.enqueueBroadcast(data, nil)
}

// handleInvite relays a game invitation to every connection. Clients
// compare the invitee to their own identity and self-filter.
func (h *Hub) handleInvite(c *Client, payloadBytes json.RawMessage) {
	if !c.isAuthenticated() {
		c.logger.Warn().Msg("Anonymous client sent an invite, dropping.")
		return
	}

	var payload InvitePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid invite payload.")
		return
	}

	if payload.Invitee == "" || payload.Inviter == "" {
		c.logger.Warn().Msg("Invite payload missing fields, dropping.")
		return
	}

	metrics.SignalsTotal.WithLabelValues(string(TypeInvite)).Inc()

	data, err := NewEvent(TypeReminder, payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build reminder event.")
		return
	}
	h.enqueueBroadcast(data, nil)
}

// handleGameStart relays a game-start announcement to every
// connection.
func (h *Hub) handleGameStart(c *Client, payloadBytes json.RawMessage) {
	if !c.isAuthenticated() {
		c.logger.Warn().Msg("Anonymous client sent a gameStart, dropping.")
		return
	}

	var payload GameStartPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid gameStart payload.")
		return
	}

	if payload.Invitee == "" || payload.Opponent == "" {
		c.logger.Warn().Msg("GameStart payload missing fields, dropping.")
		return
	}

	metrics.SignalsTotal.WithLabelValues(string(TypeGameStart)).Inc()

	data, err := NewEvent(TypeInviterStart, payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build inviterStart event.")
		return
	}
	h.enqueueBroadcast(data, nil)
}

// handleGemUpdate relays a gem-count update to every connection except
// the sender.
func (h *Hub) handleGemUpdate(c *Client, payloadBytes json.RawMessage) {
	if !c.isAuthenticated() {
		c.logger.Warn().Msg("Anonymous client sent a gemUpdate, dropping.")
		return
	}

	var payload GemUpdatePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid gemUpdate payload.")
		return
	}

	if payload.Receiver == "" {
		c.logger.Warn().Msg("GemUpdate payload missing receiver, dropping.")
		return
	}

	metrics.SignalsTotal.WithLabelValues(string(TypeGemUpdate)).Inc()

	data, err := NewEvent(TypeReceiveGems, payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build receiveGems event.")
		return
	}
	h.enqueueBroadcast(data, c)
}

// OnlineCount returns the number of identities in the presence
// registry.
func (h *Hub) OnlineCount() int {
	return h.presence.Size()
}
