package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConversations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/conversations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "c1",
				"organizerId": "org-1",
				"event": {"title": "Jazz Night"},
				"organizer": {"id": "org-1", "profile": {"displayName": "Anna", "avatarUrl": "https://cdn/a.png"}, "isOnline": true},
				"participant": {"id": "usr-9", "profile": {"displayName": "Binh"}},
				"messages": [{"id": "m1", "conversationId": "c1", "senderId": "org-1", "content": "see you", "createdAt": "2026-08-01T10:00:00Z"}],
				"unreadCount": 2,
				"updatedAt": "2026-08-01T10:00:00Z"
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok-1")
	conversations, err := client.Conversations(context.Background())
	if err != nil {
		t.Fatalf("Conversations() error: %v", err)
	}

	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	c := conversations[0]
	if c.ID != "c1" || c.EventTitle != "Jazz Night" {
		t.Errorf("unexpected conversation %+v", c)
	}
	if c.Organizer.DisplayName != "Anna" || !c.Organizer.Online {
		t.Errorf("unexpected organizer %+v", c.Organizer)
	}
	if c.LastPreview != "see you" {
		t.Errorf("expected embedded last message as preview, got %q", c.LastPreview)
	}
	if c.UnreadCount != 2 {
		t.Errorf("expected unread=2, got %d", c.UnreadCount)
	}
}

func TestMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "usr-9", "profile": {"displayName": "Binh", "avatarUrl": ""}, "isOnline": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if me.ID != "usr-9" || me.DisplayName != "Binh" {
		t.Errorf("unexpected identity %+v", me)
	}
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/messages/c1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "m1", "conversationId": "c1", "senderId": "org-1", "content": "hello", "createdAt": "2026-08-01T10:00:00Z"},
			{"id": "m2", "conversationId": "c1", "senderId": "usr-9", "content": "hi", "createdAt": "2026-08-01T10:01:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	messages, err := client.Messages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "hello" || messages[1].Content != "hi" {
		t.Errorf("unexpected order: %q, %q", messages[0].Content, messages[1].Content)
	}
}

func TestChatbotQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatbot/query" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["message"] != "find me a concert" {
			t.Errorf("unexpected message %q", payload["message"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply": "Check out Jazz Night [EVENT_URL:/events/42]"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok")
	reply, err := client.ChatbotQuery(context.Background(), "find me a concert")
	if err != nil {
		t.Fatalf("ChatbotQuery() error: %v", err)
	}
	if !strings.Contains(reply, "Jazz Night") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "token expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "stale")
	_, err := client.Conversations(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Errorf("expected backend message in error, got %v", err)
	}
}
