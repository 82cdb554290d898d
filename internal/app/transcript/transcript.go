/*
Package transcript persists the ordered chat history.

The transcript is an append-only log: messages are appended in arrival
order, never mutated or deleted, and replayed in full to newly joined
connections. Appends are serialized inside the store so that concurrent
posters can never lose each other's writes.
*/
package transcript

import (
	"context"
	"time"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/randx"
)

// Message is one immutable transcript record.
type Message struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// User is the snapshot of the identity that authored the message.
	User user.User `json:"user"`

	// Datetime is the server-side arrival time.
	Datetime time.Time `json:"datetime"`

	// Content is the message text.
	Content string `json:"content"`
}

// Store is the persistence contract for the transcript.
type Store interface {
	// Append durably persists a new message before returning it. Appends
	// are serialized; two concurrent calls both end up in the log.
	Append(ctx context.Context, author user.User, content string, at time.Time) (Message, error)

	// ReadAll returns the full transcript in append order. The returned
	// slice is a snapshot; later appends do not modify it.
	ReadAll(ctx context.Context) ([]Message, error)
}

// newMessage stamps a fresh Message with a generated ID.
func newMessage(author user.User, content string, at time.Time) Message {
	return Message{
		ID:       randx.MessageID(),
		User:     author,
		Datetime: at,
		Content:  content,
	}
}
