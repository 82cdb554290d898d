/*
Package user holds the identity value attached to connections.

An identity is resolved once, when a connection is accepted, and never
changes for the lifetime of that connection.
*/
package user

// User is the authenticated identity of a chat participant.
// Fields carry JSON tags for serialization in WebSocket events.
type User struct {

	// Username uniquely identifies the account. Immutable once created.
	Username string `json:"username"`

	// Avatar is a reference to the user's avatar image.
	Avatar string `json:"avatar"`

	// Name is the display name shown to other participants.
	Name string `json:"name"`
}
