package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-builder/resume/model"
)

type fakeCompleter struct {
	reply string
	err   error
	got   []Request
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.got = append(f.got, req)
	return f.reply, f.err
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Model() string    { return "fake-1" }

func TestImproveSummarySendsRoleDescription(t *testing.T) {
	fc := &fakeCompleter{reply: "  Sharper summary.  "}
	out, err := NewImprover(fc, nil).ImproveSummary(context.Background(), "I code.", "Staff engineer")
	if err != nil {
		t.Fatalf("improve: %v", err)
	}
	if out != "Sharper summary." {
		t.Fatalf("unexpected output %q", out)
	}
	req := fc.got[0]
	if req.JSON {
		t.Fatalf("summary should be a plain text request")
	}
	user := req.Messages[len(req.Messages)-1].Content
	if !strings.Contains(user, "I code.") || !strings.Contains(user, "Staff engineer") {
		t.Fatalf("user message missing inputs: %q", user)
	}
	if req.Messages[0].Role != "system" {
		t.Fatalf("expected system prompt first")
	}
}

func TestImproveSummaryEmptyResponse(t *testing.T) {
	fc := &fakeCompleter{reply: "   "}
	if _, err := NewImprover(fc, nil).ImproveSummary(context.Background(), "a", ""); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestImproveResponsibilities(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"responsibilities\":[\"Led\",\"Built\"]}\n```"}
	entries := []model.WorkExperience{
		{CompanyName: "Acme", Position: "Dev", Description: "did things"},
		{CompanyName: "Globex", Position: "Lead"},
	}
	out, err := NewImprover(fc, nil).ImproveResponsibilities(context.Background(), entries)
	if err != nil {
		t.Fatalf("improve: %v", err)
	}
	if len(out) != 2 || out[0] != "Led" || out[1] != "Built" {
		t.Fatalf("unexpected output %v", out)
	}
	if !fc.got[0].JSON {
		t.Fatalf("responsibilities should request JSON")
	}
	user := fc.got[0].Messages[1].Content
	if !strings.Contains(user, `"companyName":"Acme"`) || strings.Contains(user, `"id"`) {
		t.Fatalf("unexpected entries payload %q", user)
	}
}

func TestImproveResponsibilitiesProviderError(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	if _, err := NewImprover(fc, nil).ImproveResponsibilities(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseResponsibilities(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "bare array", raw: `["a","b","c"]`, want: 3},
		{name: "wrapped", raw: `{"responsibilities":["a"]}`, want: 1},
		{name: "fenced", raw: "```\n[\"a\"]\n```", want: 1},
		{name: "missing key", raw: `{"items":["a"]}`, wantErr: true},
		{name: "not json", raw: `a, b`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseResponsibilities(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d items, got %v", tc.want, got)
			}
		})
	}
}

func TestLimiterBlocksUntilContextDone(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	fc := &fakeCompleter{reply: "ok"}
	imp := NewImprover(fc, limiter)
	if _, err := imp.ImproveSummary(context.Background(), "a", ""); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := imp.ImproveSummary(ctx, "a", ""); err == nil {
		t.Fatalf("expected rate limit error")
	}
	if len(fc.got) != 1 {
		t.Fatalf("expected one provider call, got %d", len(fc.got))
	}
}

func TestNewLimiterDisabled(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Fatalf("expected nil limiter for zero rate")
	}
}

func TestPromptTemplate(t *testing.T) {
	for _, name := range []string{PromptSummary, PromptResponsibilities} {
		text, ok := PromptTemplate(name)
		if !ok || strings.TrimSpace(text) == "" {
			t.Fatalf("missing prompt %s", name)
		}
	}
	if _, ok := PromptTemplate("v9"); ok {
		t.Fatalf("unexpected prompt for unknown name")
	}
}
