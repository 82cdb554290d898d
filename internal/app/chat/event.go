/*
Package chat contains the core logic of the relay: live WebSocket
connections, the presence registry, and the event fan-out between them.

This file defines the wire protocol: the event envelope exchanged with
clients and the payload shapes for every event type.
*/
package chat

import (
	"encoding/json"

	"gemchat/internal/app/user"
)

// EventType identifies the kind of protocol event inside an envelope.
type EventType string

// Inbound event types (client to server).
const (
	TypeRequestUsers    EventType = "requestUsers"
	TypeRequestMessages EventType = "requestMessages"
	TypePostMessage     EventType = "postMessage"
	TypeInvite          EventType = "invite"
	TypeGameStart       EventType = "gameStart"
	TypeGemUpdate       EventType = "gemUpdate"
)

// Outbound event types (server to client).
const (
	TypeUsers        EventType = "users"
	TypeMessages     EventType = "messages"
	TypeNewMessage   EventType = "newMessage"
	TypeUserJoined   EventType = "userJoined"
	TypeUserLeft     EventType = "userLeft"
	TypeReminder     EventType = "reminder"
	TypeInviterStart EventType = "inviterStart"
	TypeReceiveGems  EventType = "receiveGems"
	TypeError        EventType = "error"
)

// Event is the envelope every protocol message travels in.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PostMessagePayload carries the text of a chat message being posted.
type PostMessagePayload struct {
	Content string `json:"content"`
}

// InvitePayload names the two parties of a game invitation. It is
// relayed verbatim as a reminder event.
type InvitePayload struct {
	Invitee string `json:"invitee"`
	Inviter string `json:"inviter"`
}

// GameStartPayload announces that the inviter has entered the game. It
// is relayed verbatim as an inviterStart event.
type GameStartPayload struct {
	Invitee  string `json:"invitee"`
	Opponent string `json:"opponent"`
}

// GemUpdatePayload carries a gem-count update for the named receiver.
// It is relayed as a receiveGems event to everyone but the sender.
type GemUpdatePayload struct {
	Receiver string `json:"receiver"`
	Count    int    `json:"count"`
}

// ErrorPayload reports a coded failure to a single connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PresenceInfo is the public view of one online identity, keyed by
// username in the users event payload.
type PresenceInfo struct {
	Avatar string `json:"avatar"`
	Name   string `json:"name"`
}

// NewEvent marshals an event envelope with the given payload.
func NewEvent(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Event{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

// identityInfo converts an identity to its presence view.
func identityInfo(identity user.User) PresenceInfo {
	return PresenceInfo{
		Avatar: identity.Avatar,
		Name:   identity.Name,
	}
}
