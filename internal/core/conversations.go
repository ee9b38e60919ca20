package core

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/freedayhq/freeday-chat/internal/constants"
)

// ConversationList maintains the ordered sidebar list: human conversations
// sorted most-recent-first, with the synthetic assistant conversation pinned
// unconditionally at index 0.
type ConversationList struct {
	mu        sync.Mutex
	assistant Conversation
	humans    []Conversation
	selected  string
}

// NewConversationList creates a list seeded with the assistant conversation.
func NewConversationList() *ConversationList {
	return &ConversationList{
		assistant: Conversation{
			ID:          constants.AssistantConversationID,
			Kind:        KindAssistant,
			EventTitle:  constants.AssistantDisplayName,
			LastPreview: constants.AssistantGreeting,
			UpdatedAt:   time.Now(),
		},
	}
}

// SetHumans replaces the human conversations, typically from the initial
// fetch, and sorts them by recency.
func (l *ConversationList) SetHumans(conversations []Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.humans = append([]Conversation(nil), conversations...)
	l.sortLocked()
}

// ApplyInbound updates the preview of the conversation a push message belongs
// to and re-sorts. Messages for conversations not in the list are ignored;
// the next full fetch will pick the new conversation up. It reports whether
// a conversation was updated.
func (l *ConversationList) ApplyInbound(msg Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.humans {
		if l.humans[i].ID != msg.ConversationID {
			continue
		}
		l.humans[i].LastPreview = msg.Content
		l.humans[i].LastPreviewAt = msg.CreatedAt
		l.humans[i].UpdatedAt = msg.CreatedAt
		if l.selected != msg.ConversationID {
			l.humans[i].UnreadCount++
		}
		l.sortLocked()
		return true
	}
	return false
}

// SetAssistantPreview updates the pinned assistant entry's preview text.
func (l *ConversationList) SetAssistantPreview(text string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.assistant.LastPreview = text
	l.assistant.LastPreviewAt = at
	l.assistant.UpdatedAt = at
}

// All returns the rendered order: assistant first, then humans by recency.
func (l *ConversationList) All() []Conversation {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Conversation, 0, len(l.humans)+1)
	out = append(out, l.assistant)
	out = append(out, l.humans...)
	return out
}

// Filter returns the rendered order narrowed by a case-insensitive substring
// match over display name and preview text. The underlying order is not
// mutated; an empty query returns everything.
func (l *ConversationList) Filter(viewer Identity, query string) []Conversation {
	all := l.All()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	out := make([]Conversation, 0, len(all))
	for _, c := range all {
		view := NormalizeConversation(c, viewer)
		if strings.Contains(strings.ToLower(view.DisplayName), q) ||
			strings.Contains(strings.ToLower(view.PreviewText), q) {
			out = append(out, c)
		}
	}
	return out
}

// Select marks the conversation as the single selected one and clears its
// unread count. It returns the conversation and whether the id was found.
func (l *ConversationList) Select(id string) (Conversation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id == l.assistant.ID {
		l.selected = id
		return l.assistant, true
	}
	for i := range l.humans {
		if l.humans[i].ID == id {
			l.selected = id
			l.humans[i].UnreadCount = 0
			return l.humans[i], true
		}
	}
	return Conversation{}, false
}

// Selected returns the id of the selected conversation, or "".
func (l *ConversationList) Selected() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.selected
}

// Get returns a conversation by id.
func (l *ConversationList) Get(id string) (Conversation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id == l.assistant.ID {
		return l.assistant, true
	}
	for _, c := range l.humans {
		if c.ID == id {
			return c, true
		}
	}
	return Conversation{}, false
}

// sortLocked re-sorts humans descending by preview timestamp, falling back to
// the conversation-updated timestamp when no message has arrived yet. The
// assistant entry is never part of the sort.
func (l *ConversationList) sortLocked() {
	sort.SliceStable(l.humans, func(i, j int) bool {
		return recencyOf(l.humans[i]).After(recencyOf(l.humans[j]))
	})
}

func recencyOf(c Conversation) time.Time {
	if !c.LastPreviewAt.IsZero() {
		return c.LastPreviewAt
	}
	return c.UpdatedAt
}
