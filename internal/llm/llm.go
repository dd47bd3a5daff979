// Package llm implements the text-improvement capability on top of chat
// completion providers.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/model"
)

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion call.
type Request struct {
	Messages []Message
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Completer is a chat completion provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
	Model() string
}

// ErrEmptyResponse is returned when the provider answers with no usable text.
var ErrEmptyResponse = errors.New("llm returned an empty response")

// Improver implements summary and responsibilities improvement over a Completer.
type Improver struct {
	completer Completer
	limiter   *rate.Limiter
}

// NewImprover wraps c. A nil limiter disables throttling.
func NewImprover(c Completer, limiter *rate.Limiter) *Improver {
	return &Improver{completer: c, limiter: limiter}
}

// NewLimiter returns a token bucket limiter for outbound calls. A non-positive
// rate disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// ImproveSummary returns an improved summary for the target role.
func (i *Improver) ImproveSummary(ctx context.Context, summary, description string) (string, error) {
	out, err := i.complete(ctx, PromptSummary, Request{Messages: summaryMessages(summary, description)})
	if err != nil {
		return "", err
	}
	return out, nil
}

// ImproveResponsibilities returns one improved description per entry.
func (i *Improver) ImproveResponsibilities(ctx context.Context, entries []model.WorkExperience) ([]string, error) {
	payload, err := json.Marshal(promptEntries(entries))
	if err != nil {
		return nil, err
	}
	raw, err := i.complete(ctx, PromptResponsibilities, Request{Messages: responsibilitiesMessages(payload), JSON: true})
	if err != nil {
		return nil, err
	}
	return ParseResponsibilities(raw)
}

func (i *Improver) complete(ctx context.Context, prompt string, req Request) (string, error) {
	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("llm rate limit: %w", err)
		}
	}
	start := time.Now()
	fields := map[string]any{
		"provider":    i.completer.Provider(),
		"model":       i.completer.Model(),
		"prompt":      prompt,
		"prompt_hash": util.HashKey(PromptString(req.Messages)),
	}
	out, err := i.completer.Complete(ctx, req)
	fields["duration_ms"] = time.Since(start).Milliseconds()
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		fields["outcome"] = "error"
		fields["err"] = err.Error()
		telemetry.Error("llm completion failed", fields)
		return "", err
	}
	fields["outcome"] = "ok"
	telemetry.Info("llm completion", fields)
	return strings.TrimSpace(out), nil
}

type promptEntry struct {
	CompanyName string `json:"companyName"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	IsCurrent   bool   `json:"isCurrent"`
	Description string `json:"description"`
}

func promptEntries(entries []model.WorkExperience) []promptEntry {
	out := make([]promptEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, promptEntry{
			CompanyName: e.CompanyName,
			Position:    e.Position,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			IsCurrent:   e.IsCurrent,
			Description: e.Description,
		})
	}
	return out
}

// ParseResponsibilities accepts a bare JSON array of strings or an object
// holding one under "responsibilities", optionally fenced as markdown.
func ParseResponsibilities(raw string) ([]string, error) {
	text := CleanJSONBlock(raw)
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Responsibilities []string `json:"responsibilities"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
		return nil, fmt.Errorf("parse responsibilities: %w", err)
	}
	if wrapped.Responsibilities == nil {
		return nil, fmt.Errorf("parse responsibilities: missing responsibilities array")
	}
	return wrapped.Responsibilities, nil
}

// CleanJSONBlock removes markdown code fences around a JSON payload.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
