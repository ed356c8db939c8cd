// Package domain contains core concepts of the event assistant.
// This file defines chat messages exchanged with the assistant.
// Messages are immutable once appended to a conversation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type ConversationID string

// ChatMessage is one entry of the append-only conversation log.
// LinkedEventID is only set on assistant suggestions.
type ChatMessage struct {
	ID            uuid.UUID
	Conversation  ConversationID
	Sender        Sender
	Text          string
	LinkedEventID EventID
	At            time.Time
}

// IsSuggestion reports whether the message points to an event the user can open.
func (m ChatMessage) IsSuggestion() bool {
	return m.Sender == SenderAssistant && m.LinkedEventID != ""
}
