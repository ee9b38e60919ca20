// Package core holds the conversation domain model and the session state
// machinery behind the chat view.
package core

import (
	"time"
)

// ConversationKind tags the two conversation variants.
type ConversationKind string

const (
	KindHuman     ConversationKind = "human"
	KindAssistant ConversationKind = "assistant"
)

// Identity is the authenticated user or a conversation participant.
type Identity struct {
	ID          string
	DisplayName string
	AvatarURL   string
	Online      bool
}

// Conversation is one channel of messages: either between two people, or the
// synthetic single-user/assistant channel.
type Conversation struct {
	ID          string
	Kind        ConversationKind
	EventTitle  string
	Organizer   Identity
	Participant Identity
	OrganizerID string

	LastPreview   string
	LastPreviewAt time.Time
	UpdatedAt     time.Time
	UnreadCount   int
}

// IsAssistant reports whether this is the synthetic assistant conversation.
func (c Conversation) IsAssistant() bool {
	return c.Kind == KindAssistant
}

// Message is a single entry in a conversation's ordered log.
// ID is empty for optimistic entries that have not round-tripped the server.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	CreatedAt      time.Time
}

// Confirmed reports whether the message carries a server-assigned id.
func (m Message) Confirmed() bool {
	return m.ID != ""
}

// LoadState is the per-conversation history lifecycle.
type LoadState int

const (
	LoadUnloaded LoadState = iota
	LoadLoading
	LoadReady
)

// EventType identifies the type of event.
type EventType string

const (
	EventConversationsLoaded EventType = "conversations_loaded"
	EventConversationUpdated EventType = "conversation_updated"
	EventMessagesReplaced    EventType = "messages_replaced"
	EventMessageAppended     EventType = "message_appended"
	EventHistoryFailed       EventType = "history_failed"
	EventAssistantThinking   EventType = "assistant_thinking"
	EventTransportUp         EventType = "transport_up"
	EventTransportDown       EventType = "transport_down"
)

// Event is published on the bus whenever session state changes.
type Event struct {
	Type           EventType
	ConversationID string
	Data           interface{}
	Timestamp      time.Time
}

// AppendedData rides EventMessageAppended.
type AppendedData struct {
	Message Message
	// Active is true when the message belongs to the currently selected
	// conversation; inactive appends only refresh sidebar previews.
	Active bool
}

// ErrorData rides EventHistoryFailed and EventTransportDown.
type ErrorData struct {
	Error string
}

// ThinkingData rides EventAssistantThinking.
type ThinkingData struct {
	Loading bool
}
