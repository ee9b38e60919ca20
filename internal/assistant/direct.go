package assistant

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/freedayhq/freeday-chat/internal/config"
)

// systemPrompt frames the direct backend the way the platform chatbot is
// framed server-side, including the inline event-link marker convention.
const systemPrompt = `You are the FreeDay assistant, helping users discover events on the FreeDay platform.
Answer briefly. When you recommend a specific event, append a marker of the form
[EVENT_URL:/events/<id>] right after the event name.`

// DirectResponder asks an OpenAI-compatible endpoint directly, for
// self-hosted deployments that skip the platform chatbot.
type DirectResponder struct {
	client      *openai.Client
	model       string
	temperature float64
	limiter     *rate.Limiter
}

// NewDirectResponder creates a responder against cfg.Endpoint.
// The endpoint is expected to expose an OpenAI-compatible API at /v1.
func NewDirectResponder(cfg config.AssistantConfig) *DirectResponder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/v1"

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	return &DirectResponder{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     limiter,
	}
}

// Reply sends one single-turn completion request.
func (r *DirectResponder) Reply(ctx context.Context, text string) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: float32(r.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
