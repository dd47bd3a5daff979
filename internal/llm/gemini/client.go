// Package gemini implements llm.Completer with Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"resume-builder/internal/llm"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// Client wraps a genai client bound to one model.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

var _ llm.Completer = (*Client)(nil)

// Provider returns "gemini".
func (c *Client) Provider() string { return "gemini" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Complete sends system messages as the system instruction and the remaining
// messages as user content.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0.3)
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}
	system, parts := splitMessages(req.Messages)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini request has no user content")
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	if req.JSON {
		return llm.CleanJSONBlock(text), nil
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func splitMessages(messages []llm.Message) (string, []genai.Part) {
	var system []string
	parts := make([]genai.Part, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	return strings.Join(system, "\n\n"), parts
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}
