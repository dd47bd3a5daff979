// Package remote implements augment.Improver against the document backend's
// improve endpoints.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"resume-builder/internal/shared/httpapi"
	"resume-builder/resume/model"
)

const (
	summaryPath          = "/resume/improve-summary"
	responsibilitiesPath = "/resume/improve-responsibilities"
)

// Client calls the backend improve endpoints.
type Client struct {
	api *httpapi.Client
}

// New returns a Client using api for transport.
func New(api *httpapi.Client) *Client {
	return &Client{api: api}
}

type summaryRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

type responsibilitiesRequest struct {
	WorkExperience []model.WorkExperience `json:"workExperience"`
}

// ImproveSummary posts {summary, description}. The backend answers either
// {"text": "..."} or a bare JSON string.
func (c *Client) ImproveSummary(ctx context.Context, summary, description string) (string, error) {
	raw, err := c.api.Do(ctx, http.MethodPost, summaryPath, summaryRequest{Summary: summary, Description: description}, nil)
	if err != nil {
		return "", err
	}
	return decodeText(raw)
}

// ImproveResponsibilities posts {workExperience} and expects a string array
// parallel to the input.
func (c *Client) ImproveResponsibilities(ctx context.Context, entries []model.WorkExperience) ([]string, error) {
	var out []string
	if _, err := c.api.Do(ctx, http.MethodPost, responsibilitiesPath, responsibilitiesRequest{WorkExperience: entries}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeText(raw []byte) (string, error) {
	var wrapped struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Text != nil {
		return *wrapped.Text, nil
	}
	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("improve summary: empty response")
	}
	return text, nil
}
