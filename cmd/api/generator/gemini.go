package generator

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"career-chat/config"
)

// GeminiBackend sends chat requests through the Gemini API.
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates the genai client once at startup. httpClient may be
// nil, in which case the SDK default is used.
func NewGeminiBackend(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*GeminiBackend, error) {
	return newGeminiBackend(ctx, cfg, httpClient, genai.HTTPOptions{})
}

func newGeminiBackend(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client, httpOptions genai.HTTPOptions) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

// Send opens a chat seeded with req.History and sends req.Message.
func (b *GeminiBackend) Send(ctx context.Context, req Request) (*genai.GenerateContentResponse, error) {
	chat, err := b.client.Chats.Create(ctx, req.Model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}},
	}, req.History)
	if err != nil {
		return nil, err
	}
	return chat.SendMessage(ctx, genai.Part{Text: req.Message})
}
