package core

import (
	"fmt"
	"testing"
	"time"
)

func msgAt(conv, sender, content string, at time.Time) Message {
	return Message{
		ID:             fmt.Sprintf("srv-%s-%d", conv, at.UnixNano()),
		ConversationID: conv,
		SenderID:       sender,
		Content:        content,
		CreatedAt:      at,
	}
}

func TestMessageStoreLoadLifecycle(t *testing.T) {
	s := NewMessageStore()

	if s.State("conv-1") != LoadUnloaded {
		t.Error("expected unloaded before activation")
	}

	gen := s.Activate("conv-1")
	if s.State("conv-1") != LoadLoading {
		t.Error("expected loading after activation")
	}

	now := time.Now()
	history := []Message{
		msgAt("conv-1", "alice", "hello", now.Add(-2*time.Minute)),
		msgAt("conv-1", "bob", "hi", now.Add(-time.Minute)),
		msgAt("conv-1", "alice", "how are you?", now),
	}
	if !s.Replace(gen, "conv-1", history) {
		t.Fatal("expected replace to apply")
	}

	if s.State("conv-1") != LoadReady {
		t.Error("expected ready after replace")
	}
	got := s.Messages("conv-1")
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	// Display order is insertion order
	for i, want := range []string{"hello", "hi", "how are you?"} {
		if got[i].Content != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Content)
		}
	}
}

// Replace followed by N appends yields exactly len(replace)+N entries:
// nothing is dropped, nothing is doubled.
func TestMessageStoreNoDuplicateNoDrop(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	gen := s.Activate("conv-1")
	s.Replace(gen, "conv-1", []Message{
		msgAt("conv-1", "alice", "one", now),
		msgAt("conv-1", "alice", "two", now),
	})

	const n = 10
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			s.AppendInbound(msgAt("conv-1", "alice", fmt.Sprintf("inbound-%d", i), now.Add(time.Duration(i)*time.Second)))
		} else {
			s.AppendOptimistic(Message{
				ConversationID: "conv-1",
				SenderID:       "me",
				Content:        fmt.Sprintf("mine-%d", i),
				CreatedAt:      now.Add(time.Duration(i) * time.Second),
			})
		}
	}

	if got := s.Len("conv-1"); got != 2+n {
		t.Errorf("expected %d messages, got %d", 2+n, got)
	}
}

// A history fetch that resolves after the user switched conversations must
// not mutate the superseded conversation's log.
func TestMessageStoreStaleFetchDiscarded(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	genA := s.Activate("conv-a")

	// User switches to B before A's fetch resolves.
	genB := s.Activate("conv-b")
	if !s.Replace(genB, "conv-b", []Message{msgAt("conv-b", "bob", "b-history", now)}) {
		t.Fatal("expected active fetch to apply")
	}

	if s.Replace(genA, "conv-a", []Message{msgAt("conv-a", "alice", "a-history", now)}) {
		t.Error("stale fetch must be discarded")
	}
	if s.Len("conv-a") != 0 {
		t.Error("stale fetch mutated the superseded conversation")
	}
	if s.Len("conv-b") != 1 {
		t.Error("active conversation lost its history")
	}

	// Same guard for failures.
	if s.Fail(genA, "conv-a", "boom") {
		t.Error("stale failure must be discarded")
	}
	if s.Failure("conv-b") != "" {
		t.Error("stale failure leaked into the active conversation")
	}
}

// Re-activating the same conversation supersedes the earlier fetch too: only
// the newest generation may apply.
func TestMessageStoreReactivationSupersedes(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	gen1 := s.Activate("conv-a")
	gen2 := s.Activate("conv-a")

	if s.Replace(gen1, "conv-a", []Message{msgAt("conv-a", "x", "old", now)}) {
		t.Error("superseded generation must not apply")
	}
	if !s.Replace(gen2, "conv-a", []Message{msgAt("conv-a", "x", "new", now)}) {
		t.Error("current generation must apply")
	}

	got := s.Messages("conv-a")
	if len(got) != 1 || got[0].Content != "new" {
		t.Errorf("expected only the newest fetch, got %v", got)
	}
}

func TestMessageStoreFailureState(t *testing.T) {
	s := NewMessageStore()

	gen := s.Activate("conv-1")
	if !s.Fail(gen, "conv-1", "Could not fetch messages.") {
		t.Fatal("expected failure to apply")
	}

	if s.State("conv-1") != LoadReady {
		t.Error("failed conversation should still become ready")
	}
	if s.Failure("conv-1") != "Could not fetch messages." {
		t.Errorf("unexpected failure text: %q", s.Failure("conv-1"))
	}
	if s.Len("conv-1") != 0 {
		t.Error("failed conversation should have an empty log")
	}

	// A later successful activation clears the error.
	gen = s.Activate("conv-1")
	s.Replace(gen, "conv-1", nil)
	if s.Failure("conv-1") != "" {
		t.Error("expected failure cleared on successful replace")
	}
}

func TestMessageStoreInboundRouting(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	genA := s.Activate("conv-a")
	s.Replace(genA, "conv-a", nil)

	if active := s.AppendInbound(msgAt("conv-a", "alice", "to active", now)); !active {
		t.Error("message for displayed conversation should report active")
	}

	// A message for a conversation that is not displayed must not report
	// active; its preview update is the list controller's job.
	if active := s.AppendInbound(msgAt("conv-b", "bob", "elsewhere", now)); active {
		t.Error("message for background conversation reported active")
	}
	if s.Len("conv-a") != 1 {
		t.Errorf("expected 1 message in active log, got %d", s.Len("conv-a"))
	}
}

func TestMessageStoreEchoAdoptsOptimistic(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	gen := s.Activate("conv-1")
	s.Replace(gen, "conv-1", nil)

	s.AppendOptimistic(Message{
		ConversationID: "conv-1",
		SenderID:       "me",
		Content:        "hello there",
		CreatedAt:      now,
	})

	// Server echoes the send back over the push channel.
	echo := Message{
		ID:             "srv-42",
		ConversationID: "conv-1",
		SenderID:       "me",
		Content:        "hello there",
		CreatedAt:      now.Add(200 * time.Millisecond),
	}
	s.AppendInbound(echo)

	got := s.Messages("conv-1")
	if len(got) != 1 {
		t.Fatalf("echo should adopt the optimistic entry, got %d messages", len(got))
	}
	if got[0].ID != "srv-42" {
		t.Errorf("optimistic entry did not adopt server id, got %q", got[0].ID)
	}

	// A second identical inbound is a genuinely new message.
	s.AppendInbound(msgAt("conv-1", "me", "hello there", now.Add(time.Second)))
	if s.Len("conv-1") != 2 {
		t.Errorf("confirmed entry must not swallow new messages, got %d", s.Len("conv-1"))
	}
}

func TestMessageStoreEchoWindowExpired(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	gen := s.Activate("conv-1")
	s.Replace(gen, "conv-1", nil)

	s.AppendOptimistic(Message{
		ConversationID: "conv-1",
		SenderID:       "me",
		Content:        "ping",
		CreatedAt:      now.Add(-time.Minute),
	})

	// Same text long after the window: a distinct message, not an echo.
	s.AppendInbound(msgAt("conv-1", "me", "ping", now))

	if s.Len("conv-1") != 2 {
		t.Errorf("expected 2 messages outside the echo window, got %d", s.Len("conv-1"))
	}
}

// Optimistic entries keep their insertion position relative to later inbound
// arrivals; the store never re-sorts by timestamp.
func TestMessageStoreOptimisticKeepsPosition(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	gen := s.Activate("conv-1")
	s.Replace(gen, "conv-1", nil)

	s.AppendOptimistic(Message{
		ConversationID: "conv-1",
		SenderID:       "me",
		Content:        "optimistic",
		// Client clock ahead of the server's.
		CreatedAt: now.Add(time.Hour),
	})
	s.AppendInbound(msgAt("conv-1", "alice", "inbound later", now))

	got := s.Messages("conv-1")
	if got[0].Content != "optimistic" || got[1].Content != "inbound later" {
		t.Errorf("insertion order violated: %q then %q", got[0].Content, got[1].Content)
	}
}

func TestMessageStoreSeedIdempotent(t *testing.T) {
	s := NewMessageStore()
	now := time.Now()

	greeting := []Message{{ConversationID: "ai", SenderID: "bot", Content: "hi", CreatedAt: now}}
	s.Seed("ai", greeting)
	s.AppendOptimistic(Message{ConversationID: "ai", SenderID: "user", Content: "question", CreatedAt: now})

	// Switching away and back must not reset the assistant transcript.
	s.Activate("conv-1")
	s.Seed("ai", greeting)

	if s.Len("ai") != 2 {
		t.Errorf("re-seed reset the assistant transcript, got %d messages", s.Len("ai"))
	}
	if s.Active() != "ai" {
		t.Errorf("expected assistant active after seed, got %q", s.Active())
	}
}
