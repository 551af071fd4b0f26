package domain

import "time"

type Message struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Receiver   string    `json:"receiver"`
	Content    string    `json:"content"`
	Attachment string    `json:"attachment,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation is a derived view: one row per counterpart the viewer has
// exchanged messages with. It is computed per request, never stored.
type Conversation struct {
	Counterpart   UserSummary `json:"counterpart"`
	LastMessage   string      `json:"last_message"`
	LastMessageAt time.Time   `json:"last_message_at"`
	Unread        bool        `json:"unread"`
	Online        bool        `json:"online"`
}
