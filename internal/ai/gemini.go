// Package ai wraps the Gemini text and vision model behind a small interface so
// report insights and receipt scanning can be tested without the network.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Blob is an inline attachment such as a receipt image.
type Blob struct {
	MIMEType string
	Data     []byte
}

// Request is a single prompt, optionally with an attachment.
type Request struct {
	Prompt string
	Image  *Blob

	// JSON asks the model to answer with application/json.
	JSON bool

	Temperature *float32
	TopP        *float32
}

// TextGenerator turns a prompt into free text.
//
//go:generate mockgen -destination=mocks/mock_ai.go -source=gemini.go
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiClient is the TextGenerator backed by the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client for the Gemini API using an API key.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClient: api key is required")
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends the request and returns the raw response text.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Image.MIMEType,
				Data:     req.Image.Data,
			},
		})
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Generate: %w", ErrEmptyResponse)
	}
	return text, nil
}

// Ensure GeminiClient implements TextGenerator.
var _ TextGenerator = (*GeminiClient)(nil)
