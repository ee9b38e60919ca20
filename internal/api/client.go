// Package api is the REST client for the FreeDay backend's chat surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freedayhq/freeday-chat/internal/core"
)

// Client talks to the FreeDay REST API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a REST client for the given base URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// conversationRecord mirrors the backend's conversation JSON.
type conversationRecord struct {
	ID          string `json:"id"`
	OrganizerID string `json:"organizerId"`
	Event       struct {
		Title string `json:"title"`
	} `json:"event"`
	Organizer   participantRecord `json:"organizer"`
	Participant participantRecord `json:"participant"`
	Messages    []messageRecord   `json:"messages"`
	UnreadCount int               `json:"unreadCount"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type participantRecord struct {
	ID      string `json:"id"`
	Profile struct {
		DisplayName string `json:"displayName"`
		AvatarURL   string `json:"avatarUrl"`
	} `json:"profile"`
	IsOnline bool `json:"isOnline"`
}

// messageRecord mirrors the backend's message JSON.
type messageRecord struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r conversationRecord) toConversation() core.Conversation {
	c := core.Conversation{
		ID:          r.ID,
		Kind:        core.KindHuman,
		EventTitle:  r.Event.Title,
		OrganizerID: r.OrganizerID,
		Organizer:   r.Organizer.toIdentity(),
		Participant: r.Participant.toIdentity(),
		UnreadCount: r.UnreadCount,
		UpdatedAt:   r.UpdatedAt,
	}
	// The list endpoint embeds at most the latest message as the preview.
	if len(r.Messages) > 0 {
		c.LastPreview = r.Messages[0].Content
		c.LastPreviewAt = r.Messages[0].CreatedAt
	}
	return c
}

func (r participantRecord) toIdentity() core.Identity {
	return core.Identity{
		ID:          r.ID,
		DisplayName: r.Profile.DisplayName,
		AvatarURL:   r.Profile.AvatarURL,
		Online:      r.IsOnline,
	}
}

func (r messageRecord) toMessage() core.Message {
	return core.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		Content:        r.Content,
		CreatedAt:      r.CreatedAt,
	}
}

// Me resolves the identity behind the bearer token.
func (c *Client) Me(ctx context.Context) (core.Identity, error) {
	var record participantRecord
	if err := c.get(ctx, "/users/me", &record); err != nil {
		return core.Identity{}, fmt.Errorf("fetch current user: %w", err)
	}
	return record.toIdentity(), nil
}

// Conversations fetches all human conversations visible to the current identity.
func (c *Client) Conversations(ctx context.Context) ([]core.Conversation, error) {
	var records []conversationRecord
	if err := c.get(ctx, "/chat/conversations", &records); err != nil {
		return nil, fmt.Errorf("fetch conversations: %w", err)
	}

	conversations := make([]core.Conversation, len(records))
	for i, r := range records {
		conversations[i] = r.toConversation()
	}
	return conversations, nil
}

// Messages fetches the full history of one conversation, ascending by time.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]core.Message, error) {
	var records []messageRecord
	if err := c.get(ctx, "/chat/messages/"+conversationID, &records); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	messages := make([]core.Message, len(records))
	for i, r := range records {
		messages[i] = r.toMessage()
	}
	return messages, nil
}

// ChatbotQuery sends one user turn to the platform chatbot and returns its reply.
func (c *Client) ChatbotQuery(ctx context.Context, message string) (string, error) {
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.post(ctx, "/chatbot/query", map[string]string{"message": message}, &resp); err != nil {
		return "", fmt.Errorf("chatbot query: %w", err)
	}
	return resp.Reply, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http error %d: %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// apiErrorMessage extracts the backend's {"message": ...} error body when
// present, falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return string(body)
}
