package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freedayhq/freeday-chat/internal/constants"
)

// ErrNotConnected is returned when a send is attempted while the push
// transport is down.
var ErrNotConnected = errors.New("push transport not connected")

// ErrConversationNotFound is returned when selecting an unknown conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// API is the slice of the platform REST surface the session consumes.
type API interface {
	Conversations(ctx context.Context) ([]Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]Message, error)
}

// Transport is the push channel: one connection per session with room-scoped
// delivery. Implementations deliver inbound messages through the handler
// registered with OnMessage; the handler routes by conversation id.
type Transport interface {
	Connect(ctx context.Context) error
	JoinRoom(conversationID string) error
	Send(conversationID, content string) error
	OnMessage(func(Message))
	OnDown(func(error))
	Close() error
}

// Assistant produces the reply for one user turn of the assistant
// conversation. Implementations never fail the turn; errors surface as a
// bot-authored apology in the reply itself.
type Assistant interface {
	Ask(ctx context.Context, text string) string
}

// ReadMarker records when a conversation was last opened. Best-effort; a nil
// marker disables read tracking.
type ReadMarker interface {
	MarkRead(conversationID string, at time.Time) error
}

// Session owns the chat page's shared state: the conversation list, the
// per-conversation message logs, the single push connection and the assistant
// adapter. All mutation flows through it; the TUI observes via the event bus.
type Session struct {
	mu sync.Mutex

	self      Identity
	api       API
	transport Transport
	assistant Assistant
	marker    ReadMarker
	bus       *EventBus

	list      *ConversationList
	store     *MessageStore
	connected bool
	aiLoading bool

	ctx context.Context
}

// NewSession wires a session from its collaborators.
func NewSession(self Identity, api API, transport Transport, assistant Assistant, bus *EventBus) *Session {
	return &Session{
		self:      self,
		api:       api,
		transport: transport,
		assistant: assistant,
		bus:       bus,
		list:      NewConversationList(),
		store:     NewMessageStore(),
	}
}

// SetReadMarker installs an optional last-read recorder.
func (s *Session) SetReadMarker(m ReadMarker) {
	s.mu.Lock()
	s.marker = m
	s.mu.Unlock()
}

// Self returns the authenticated identity.
func (s *Session) Self() Identity {
	return s.self
}

// List returns the conversation list controller.
func (s *Session) List() *ConversationList {
	return s.list
}

// Store returns the message store.
func (s *Session) Store() *MessageStore {
	return s.store
}

// Connected reports whether the push transport is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// AssistantLoading reports whether an assistant turn is in flight.
func (s *Session) AssistantLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aiLoading
}

// Start loads the conversation list, connects the push transport and applies
// the optional deep-link preselection. A transport failure degrades to
// read-only instead of failing startup; an unknown preselect id falls back to
// no selection.
func (s *Session) Start(ctx context.Context, preselect string) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	conversations, err := s.api.Conversations(fetchCtx)
	cancel()
	if err != nil {
		return err
	}
	s.list.SetHumans(conversations)
	s.publish(Event{Type: EventConversationsLoaded})

	s.transport.OnMessage(s.handleInbound)
	s.transport.OnDown(s.handleDown)
	if err := s.transport.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("push connect failed, starting degraded")
		s.publish(Event{Type: EventTransportDown, Data: ErrorData{Error: "Cannot connect to chat server."}})
	} else {
		s.setConnected(true)
		s.publish(Event{Type: EventTransportUp})
	}

	if preselect != "" {
		if _, ok := s.list.Get(preselect); ok {
			s.Select(preselect)
		} else {
			log.Debug().Str("conversation", preselect).Msg("deep-link id not found, no selection")
		}
	}

	return nil
}

// Reconnect re-establishes the push transport and re-joins the active room.
func (s *Session) Reconnect() error {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.transport.Connect(ctx); err != nil {
		s.publish(Event{Type: EventTransportDown, Data: ErrorData{Error: "Cannot connect to chat server."}})
		return err
	}
	s.setConnected(true)

	if active := s.list.Selected(); active != "" && active != constants.AssistantConversationID {
		if err := s.transport.JoinRoom(active); err != nil {
			log.Warn().Err(err).Str("conversation", active).Msg("re-join room failed")
		}
	}

	s.publish(Event{Type: EventTransportUp})
	return nil
}

// Select activates a conversation. Human conversations join their push room
// and fetch history asynchronously; the assistant conversation becomes ready
// immediately with its seeded greeting. The viewport must land on the latest
// message, so the TUI treats the published replace as a forced scroll.
func (s *Session) Select(conversationID string) error {
	conversation, ok := s.list.Select(conversationID)
	if !ok {
		return ErrConversationNotFound
	}

	if s.marker != nil {
		if err := s.marker.MarkRead(conversationID, time.Now()); err != nil {
			log.Debug().Err(err).Msg("mark read failed")
		}
	}

	if conversation.IsAssistant() {
		s.store.Seed(conversationID, []Message{{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			SenderID:       constants.SenderBot,
			Content:        constants.AssistantGreeting,
			CreatedAt:      time.Now(),
		}})
		s.publish(Event{Type: EventMessagesReplaced, ConversationID: conversationID})
		return nil
	}

	gen := s.store.Activate(conversationID)
	if s.Connected() {
		if err := s.transport.JoinRoom(conversationID); err != nil {
			log.Warn().Err(err).Str("conversation", conversationID).Msg("join room failed")
		}
	}

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	go s.fetchHistory(ctx, gen, conversationID)
	return nil
}

// fetchHistory resolves the history fetch issued by Select. The generation
// token makes a fetch that outlives its conversation switch a no-op.
func (s *Session) fetchHistory(ctx context.Context, gen uint64, conversationID string) {
	fetchCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	messages, err := s.api.Messages(fetchCtx, conversationID)
	if err != nil {
		if s.store.Fail(gen, conversationID, "Could not fetch messages.") {
			s.publish(Event{Type: EventHistoryFailed, ConversationID: conversationID, Data: ErrorData{Error: "Could not fetch messages."}})
		} else {
			log.Debug().Str("conversation", conversationID).Msg("stale history failure discarded")
		}
		return
	}

	if s.store.Replace(gen, conversationID, messages) {
		s.publish(Event{Type: EventMessagesReplaced, ConversationID: conversationID})
	} else {
		log.Debug().Str("conversation", conversationID).Msg("stale history fetch discarded")
	}
}

// Send routes an outbound message: human conversations go fire-and-forget
// over the push channel after an optimistic append; the assistant
// conversation goes through the request/response adapter instead.
func (s *Session) Send(content string) error {
	active := s.list.Selected()
	if active == "" {
		return ErrConversationNotFound
	}
	if len(content) > constants.MaxMessageLength {
		content = content[:constants.MaxMessageLength]
	}

	if active == constants.AssistantConversationID {
		s.sendAssistant(active, content)
		return nil
	}

	if !s.Connected() {
		return ErrNotConnected
	}

	optimistic := Message{
		ConversationID: active,
		SenderID:       s.self.ID,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	s.store.AppendOptimistic(optimistic)
	s.publish(Event{
		Type:           EventMessageAppended,
		ConversationID: active,
		Data:           AppendedData{Message: optimistic, Active: true},
	})

	if err := s.transport.Send(active, content); err != nil {
		// The optimistic entry stays visible; the canonical history wins on
		// the next full reload.
		log.Warn().Err(err).Str("conversation", active).Msg("push send failed")
		return err
	}
	return nil
}

// sendAssistant runs one assistant turn: optimistic user message, loading
// flag, query, bot reply. The loading flag is cleared in a final step no
// matter how the query ends.
func (s *Session) sendAssistant(conversationID, content string) {
	now := time.Now()
	userMsg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       constants.SenderUser,
		Content:        content,
		CreatedAt:      now,
	}
	s.store.AppendOptimistic(userMsg)
	s.list.SetAssistantPreview(content, now)
	s.publish(Event{
		Type:           EventMessageAppended,
		ConversationID: conversationID,
		Data:           AppendedData{Message: userMsg, Active: true},
	})

	s.setAILoading(true)
	s.publish(Event{Type: EventAssistantThinking, ConversationID: conversationID, Data: ThinkingData{Loading: true}})

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer func() {
			s.setAILoading(false)
			s.publish(Event{Type: EventAssistantThinking, ConversationID: conversationID, Data: ThinkingData{Loading: false}})
		}()

		reply := s.assistant.Ask(ctx, content)

		at := time.Now()
		botMsg := Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			SenderID:       constants.SenderBot,
			Content:        reply,
			CreatedAt:      at,
		}
		s.store.AppendOptimistic(botMsg)
		s.list.SetAssistantPreview(reply, at)
		s.publish(Event{
			Type:           EventMessageAppended,
			ConversationID: conversationID,
			Data:           AppendedData{Message: botMsg, Active: true},
		})
	}()
}

// handleInbound routes a push-delivered message: the owning conversation's
// log absorbs it, the sidebar preview updates, and the TUI learns whether the
// displayed conversation changed.
func (s *Session) handleInbound(msg Message) {
	active := s.store.AppendInbound(msg)
	if s.list.ApplyInbound(msg) {
		s.publish(Event{Type: EventConversationUpdated, ConversationID: msg.ConversationID})
	}
	s.publish(Event{
		Type:           EventMessageAppended,
		ConversationID: msg.ConversationID,
		Data:           AppendedData{Message: msg, Active: active},
	})
}

// handleDown marks the transport degraded. Receiving resumes on reconnect;
// sending stays disabled until then.
func (s *Session) handleDown(err error) {
	s.setConnected(false)
	log.Warn().Err(err).Msg("push transport down")
	s.publish(Event{Type: EventTransportDown, Data: ErrorData{Error: "Cannot connect to chat server."}})
}

func (s *Session) setConnected(up bool) {
	s.mu.Lock()
	s.connected = up
	s.mu.Unlock()
}

func (s *Session) setAILoading(loading bool) {
	s.mu.Lock()
	s.aiLoading = loading
	s.mu.Unlock()
}

func (s *Session) publish(event Event) {
	if s.bus == nil {
		return
	}
	event.Timestamp = time.Now()
	s.bus.Publish(event)
}
