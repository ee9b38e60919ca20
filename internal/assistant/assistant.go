// Package assistant implements the AI-assistant reply cycle: one stateless
// request/response per user turn, instead of the push channel.
package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freedayhq/freeday-chat/internal/config"
	"github.com/freedayhq/freeday-chat/internal/constants"
)

// Responder produces the raw reply for one user turn.
type Responder interface {
	Reply(ctx context.Context, text string) (string, error)
}

// QueryClient is the platform chatbot endpoint, satisfied by api.Client.
type QueryClient interface {
	ChatbotQuery(ctx context.Context, message string) (string, error)
}

// Adapter turns a user turn into a reply and never fails the turn: query
// errors come back as a bot-authored apology, so the conversation stays
// usable for the next turn.
type Adapter struct {
	responder Responder
}

// NewAdapter wraps a responder.
func NewAdapter(r Responder) *Adapter {
	return &Adapter{responder: r}
}

// New builds the adapter selected by configuration: the platform chatbot
// endpoint by default, or a direct OpenAI-compatible endpoint.
func New(cfg config.AssistantConfig, query QueryClient) (*Adapter, error) {
	switch cfg.Backend {
	case "", "platform":
		return NewAdapter(&PlatformResponder{client: query}), nil
	case "direct":
		return NewAdapter(NewDirectResponder(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown assistant backend %q", cfg.Backend)
	}
}

// Ask runs one turn. The returned text is always renderable as a bot message.
func (a *Adapter) Ask(ctx context.Context, text string) string {
	queryCtx, cancel := context.WithTimeout(ctx, constants.AssistantTimeout)
	defer cancel()

	reply, err := a.responder.Reply(queryCtx, text)
	if err != nil {
		log.Warn().Err(err).Msg("assistant query failed")
		return constants.AssistantApology
	}
	if reply == "" {
		return constants.AssistantApology
	}
	return reply
}

// PlatformResponder asks the FreeDay chatbot endpoint.
type PlatformResponder struct {
	client QueryClient
}

// NewPlatformResponder wraps the platform query client.
func NewPlatformResponder(client QueryClient) *PlatformResponder {
	return &PlatformResponder{client: client}
}

// Reply sends the turn to the platform chatbot.
func (r *PlatformResponder) Reply(ctx context.Context, text string) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("no platform client configured")
	}
	return r.client.ChatbotQuery(ctx, text)
}
