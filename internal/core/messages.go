package core

import (
	"sync"

	"github.com/freedayhq/freeday-chat/internal/constants"
)

// MessageStore keeps the ordered message log of each conversation the user
// has opened. Display order is strictly insertion order: a Replace from the
// history fetch followed by appends in arrival order. The store never re-sorts
// by timestamp because optimistic entries carry only a client clock.
//
// Every activation bumps a generation counter; a history fetch captures the
// generation it was issued under and its result is discarded if the user has
// switched conversations in the meantime.
type MessageStore struct {
	mu         sync.Mutex
	active     string
	generation uint64
	states     map[string]LoadState
	logs       map[string][]Message
	failures   map[string]string
}

// NewMessageStore creates an empty message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		states:   make(map[string]LoadState),
		logs:     make(map[string][]Message),
		failures: make(map[string]string),
	}
}

// Activate marks conversationID as the displayed conversation and moves it to
// the loading state. It returns the generation token the caller must present
// when the history fetch resolves.
func (s *MessageStore) Activate(conversationID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = conversationID
	s.generation++
	s.states[conversationID] = LoadLoading
	delete(s.failures, conversationID)
	return s.generation
}

// Seed readies a conversation with an initial log without a fetch, used for
// the assistant conversation whose history is not persisted server-side.
// Seeding is a no-op once the conversation has a log, so switching back to
// the assistant keeps the session's transcript.
func (s *MessageStore) Seed(conversationID string, initial []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = conversationID
	s.generation++
	if s.states[conversationID] != LoadReady {
		s.logs[conversationID] = append([]Message(nil), initial...)
		s.states[conversationID] = LoadReady
	}
	delete(s.failures, conversationID)
}

// Replace installs the fetched history for conversationID. The result is
// discarded when gen is stale or the conversation is no longer displayed,
// so a slow fetch can never clobber the list the user is actually reading.
// It reports whether the replace was applied.
func (s *MessageStore) Replace(gen uint64, conversationID string, messages []Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || conversationID != s.active {
		return false
	}

	s.logs[conversationID] = append([]Message(nil), messages...)
	s.states[conversationID] = LoadReady
	delete(s.failures, conversationID)
	return true
}

// Fail records a history-fetch failure. Stale failures are discarded under
// the same rule as Replace. The conversation still becomes ready, with an
// empty log and a conversation-scoped error in place of content.
func (s *MessageStore) Fail(gen uint64, conversationID string, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || conversationID != s.active {
		return false
	}

	s.logs[conversationID] = nil
	s.states[conversationID] = LoadReady
	s.failures[conversationID] = reason
	return true
}

// AppendInbound applies a push-delivered message to its conversation's log
// and reports whether that conversation is the one currently displayed.
//
// If the message is the server echo of an unconfirmed optimistic entry
// (same sender, same content, within the echo window), the entry adopts the
// server id instead of appending a duplicate.
func (s *MessageStore) AppendInbound(msg Message) (active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active = msg.ConversationID == s.active

	// Only conversations with a materialized log accumulate messages; the
	// canonical history is fetched on the next activation anyway.
	if s.states[msg.ConversationID] != LoadReady {
		return active
	}

	log := s.logs[msg.ConversationID]
	for i := len(log) - 1; i >= 0; i-- {
		prior := log[i]
		if prior.Confirmed() {
			continue
		}
		if prior.SenderID == msg.SenderID && prior.Content == msg.Content {
			delta := msg.CreatedAt.Sub(prior.CreatedAt)
			if delta < 0 {
				delta = -delta
			}
			if delta <= constants.EchoWindow {
				log[i].ID = msg.ID
				log[i].CreatedAt = msg.CreatedAt
				return active
			}
		}
	}

	s.logs[msg.ConversationID] = append(log, msg)
	return active
}

// AppendOptimistic adds a locally-originated message before transport
// confirmation. The entry keeps its insertion position relative to later
// inbound arrivals.
func (s *MessageStore) AppendOptimistic(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[msg.ConversationID] = append(s.logs[msg.ConversationID], msg)
	if s.states[msg.ConversationID] != LoadReady {
		s.states[msg.ConversationID] = LoadReady
	}
}

// Messages returns a copy of the conversation's log in display order.
func (s *MessageStore) Messages(conversationID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Message(nil), s.logs[conversationID]...)
}

// Len returns the number of messages in the conversation's log.
func (s *MessageStore) Len(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.logs[conversationID])
}

// State returns the conversation's load state.
func (s *MessageStore) State(conversationID string) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.states[conversationID]
}

// Failure returns the conversation-scoped history error, if any.
func (s *MessageStore) Failure(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failures[conversationID]
}

// Active returns the id of the currently displayed conversation.
func (s *MessageStore) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}
