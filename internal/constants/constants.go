package constants

import "time"

// AssistantConversationID is the sentinel id of the synthetic AI-assistant
// conversation. It never collides with server-assigned conversation ids.
const AssistantConversationID = "ai-assistant"

// AssistantDisplayName is the fixed display name of the assistant conversation.
const AssistantDisplayName = "FreeDay AI Assistant"

// AssistantTagline is shown under the assistant's name in the sidebar.
const AssistantTagline = "Event Q&A and suggestions"

// AssistantGreeting seeds the assistant conversation at session start.
const AssistantGreeting = "Hi! I'm the FreeDay assistant. What kind of event are you looking for?"

// AssistantReadyPreview is the sidebar preview shown before any assistant turn.
const AssistantReadyPreview = "Ready to answer..."

// AssistantApology is appended as a bot message when a query fails.
const AssistantApology = "Sorry, something went wrong. Please try again later."

// Sender sentinels for assistant-conversation messages, which have no
// server-assigned identities.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// UnknownUserName is the placeholder when a participant has no display name.
const UnknownUserName = "Unknown User"

// NearBottomLines is the pin threshold: if the viewport is within this many
// lines of the bottom, new messages auto-scroll into view. Calibrated so
// "basically at the bottom" still counts as pinned.
const NearBottomLines = 4

// EchoWindow bounds how far apart an optimistic send and its server echo may
// be and still be treated as the same message.
const EchoWindow = 10 * time.Second

// MaxMessageLength caps outbound message length, matching the backend limit.
const MaxMessageLength = 1000

// UnreadBadgeCap is the largest count rendered in a sidebar badge; anything
// above renders as "99+".
const UnreadBadgeCap = 99

// EventBusBufferSize buffers events between the session and the TUI.
const EventBusBufferSize = 256

// MinEventBusBufferSize is the floor for subscriber channel buffers.
const MinEventBusBufferSize = 16

// RequestTimeout caps a single REST call.
const RequestTimeout = 15 * time.Second

// AssistantTimeout caps a single assistant query, which can be slow.
const AssistantTimeout = 60 * time.Second

// DialTimeout caps the websocket handshake.
const DialTimeout = 10 * time.Second

// WriteTimeout caps a single websocket write.
const WriteTimeout = 10 * time.Second

// PingInterval keeps the push connection alive through idle proxies.
const PingInterval = 30 * time.Second
