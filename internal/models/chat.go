package models

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type MessageStatus string

const (
	// StatusSending marks a message whose content is still being streamed.
	StatusSending MessageStatus = "sending"
	// StatusSent marks a finalized message; content is immutable from here on.
	StatusSent MessageStatus = "sent"
	// StatusError marks a message whose generation failed; content holds the
	// error text.
	StatusError MessageStatus = "error"
)

// Attachment is a file reference carried on a message. Presentation only;
// the retrieval core never inspects attachment contents.
type Attachment struct {
	ID   string
	Type string
	URL  string
	Name string
}

// Message is a single chat message owned by a Conversation. While status is
// StatusSending the content buffer has exactly one writer (the active
// orchestrator run); readers must treat it as read-only.
type Message struct {
	ID          string
	Role        MessageRole
	Content     string
	Status      MessageStatus
	Attachments []Attachment
	CreatedAt   time.Time
}

// Conversation is an ordered message history. UpdatedAt is bumped on every
// message mutation.
type Conversation struct {
	ID        string
	Title     string
	Messages  []*Message
	CreatedAt time.Time
	UpdatedAt time.Time
}
