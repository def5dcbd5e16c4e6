package models

import "strings"

// Role identifies who produced a stored message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// SessionID is an opaque conversation identifier.
// A session exists only while at least one ChatMessage references it.
type SessionID string

// String returns the raw identifier.
func (s SessionID) String() string { return string(s) }

// IsZero reports whether the identifier is empty or whitespace only.
func (s SessionID) IsZero() bool { return strings.TrimSpace(string(s)) == "" }

// ChatMessage is a single persisted turn of a conversation.
// Table: chat_messages / Collection: chat_messages
type ChatMessage struct {
	ID        int64     `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	Role      Role      `bson:"role" json:"role"`
	SessionID SessionID `bson:"session_id" json:"session_id"`
}

// TurnRole is the role name understood by the generation service.
type TurnRole string

const (
	TurnRoleUser  TurnRole = "user"
	TurnRoleModel TurnRole = "model"
)

// Turn is one role-tagged entry of the history sent to the model.
type Turn struct {
	Role TurnRole
	Text string
}
