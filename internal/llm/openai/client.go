// Package openai implements llm.Completer over the OpenAI chat completions
// endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-builder/internal/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 4 << 20
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	HTTPClient  *http.Client
}

// Client calls the chat completions endpoint.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	temperature float32
	http        *http.Client
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("openai status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openai status %d (%s): %s", e.Status, e.Type, e.Message)
}

// NewClient returns a client for model authenticated with apiKey.
func NewClient(apiKey, model string, opts Options) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	temp := opts.Temperature
	if temp <= 0 {
		temp = 0.3
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		endpoint:    base + "/chat/completions",
		temperature: temp,
		http:        hc,
	}, nil
}

var _ llm.Completer = (*Client)(nil)

func (c *Client) Provider() string { return "openai" }
func (c *Client) Model() string    { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model          string    `json:"model"`
	Messages       []message `json:"messages"`
	Temperature    *float32  `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Param   string `json:"param"`
	} `json:"error,omitempty"`
}

// Complete sends req and returns the first choice's text. Reasoning models
// get no temperature; any other model that rejects one is asked again
// without it.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	sendTemp := !fixedTemperature(c.model)
	out, err := c.send(ctx, req, sendTemp)
	var apiErr *APIError
	if sendTemp && errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "temperature") {
		out, err = c.send(ctx, req, false)
	}
	return out, err
}

func (c *Client) send(ctx context.Context, req llm.Request, withTemp bool) (string, error) {
	body := completionRequest{Model: c.model, Messages: make([]message, len(req.Messages))}
	for i, m := range req.Messages {
		body.Messages[i] = message{Role: m.Role, Content: m.Content}
	}
	if req.JSON {
		body.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}
	if withTemp {
		t := c.temperature
		body.Temperature = &t
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}
	var parsed completionResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= http.StatusBadRequest || parsed.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && parsed.Error != nil {
			apiErr.Type, apiErr.Message = parsed.Error.Type, parsed.Error.Message
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode openai response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", llm.ErrEmptyResponse)
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: finish_reason=%s", llm.ErrEmptyResponse, parsed.Choices[0].FinishReason)
	}
	return text, nil
}

// fixedTemperature reports models that only accept the default temperature.
func fixedTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}
