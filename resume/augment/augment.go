// Package augment merges AI-improved text back into a draft. A merge either
// applies fully or leaves the draft untouched.
package augment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resume-builder/resume/form"
	"resume-builder/resume/model"
)

var (
	ErrInFlight      = errors.New("augmentation already in progress")
	ErrAugmentFailed = errors.New("augmentation failed")
	ErrNoImprover    = errors.New("augmentation is not configured")
)

// Improver is the external text-improvement capability.
type Improver interface {
	ImproveSummary(ctx context.Context, summary, description string) (string, error)
	// ImproveResponsibilities returns one description per entry, in order.
	// Shorter responses are allowed.
	ImproveResponsibilities(ctx context.Context, entries []model.WorkExperience) ([]string, error)
}

// Field identifies which draft field an augmentation call owns.
type Field string

const (
	FieldSummary          Field = "summary"
	FieldResponsibilities Field = "responsibilities"
)

// Level classifies a user-facing notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Notice is a user-facing message produced by an operation.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Result is the outcome of one augmentation call.
type Result struct {
	Applied bool        `json:"applied"`
	Notice  Notice      `json:"notice"`
	Draft   model.Draft `json:"draft"`
}

type guardKey struct {
	ctrl  *form.Controller
	field Field
}

// Adapter runs augmentation calls against form controllers.
type Adapter struct {
	improver Improver

	mu      sync.Mutex
	pending map[guardKey]struct{}
}

// NewAdapter returns an adapter backed by improver. A nil improver makes every
// call fail with ErrNoImprover.
func NewAdapter(improver Improver) *Adapter {
	return &Adapter{improver: improver, pending: map[guardKey]struct{}{}}
}

// ImproveSummary sends the current summary and target-role description and
// replaces only the summary with the response.
func (a *Adapter) ImproveSummary(ctx context.Context, ctrl *form.Controller) (Result, error) {
	release, err := a.acquire(ctrl, FieldSummary)
	if err != nil {
		return busyResult(ctrl), err
	}
	defer release()

	snap := ctrl.Draft()
	if a.improver == nil {
		return failed(ctrl.Draft(), "Failed to improve summary"), ErrNoImprover
	}
	text, err := a.improver.ImproveSummary(ctx, snap.Summary, snap.Description)
	if err != nil {
		return failed(ctrl.Draft(), "Failed to improve summary"), fmt.Errorf("%w: improve summary: %v", ErrAugmentFailed, err)
	}

	improved := StripQuotes(text)
	d, err := ctrl.Update(func(d model.Draft) (model.Draft, error) {
		d.Summary = improved
		return d, nil
	})
	if err != nil {
		return failed(ctrl.Draft(), "Failed to improve summary"), err
	}
	return Result{
		Applied: true,
		Notice:  Notice{Level: LevelSuccess, Message: "Summary improved successfully!"},
		Draft:   d,
	}, nil
}

// ImproveResponsibilities sends the work experience list and merges the
// returned descriptions by position. Entries beyond the response length, and
// entries whose response is empty, keep their description. An entry moved
// while the call was pending is followed by its LocalID; removed entries are
// skipped.
func (a *Adapter) ImproveResponsibilities(ctx context.Context, ctrl *form.Controller) (Result, error) {
	release, err := a.acquire(ctrl, FieldResponsibilities)
	if err != nil {
		return busyResult(ctrl), err
	}
	defer release()

	snap := ctrl.Draft()
	if a.improver == nil {
		return failed(ctrl.Draft(), "Failed to generate responsibilities"), ErrNoImprover
	}
	sent := snap.WorkExperience
	improved, err := a.improver.ImproveResponsibilities(ctx, sent)
	if err != nil {
		return failed(ctrl.Draft(), "Failed to generate responsibilities"), fmt.Errorf("%w: improve responsibilities: %v", ErrAugmentFailed, err)
	}

	d, err := ctrl.Update(func(d model.Draft) (model.Draft, error) {
		d.WorkExperience = MergeDescriptions(d.WorkExperience, sent, improved)
		return d, nil
	})
	if err != nil {
		return failed(ctrl.Draft(), "Failed to generate responsibilities"), err
	}
	return Result{
		Applied: true,
		Notice:  Notice{Level: LevelSuccess, Message: "Responsibilities generated successfully!"},
		Draft:   d,
	}, nil
}

// MergeDescriptions returns a copy of current with improved[i] written into
// the entry that was sent at position i. The entry at the same position is
// used when its LocalID still matches; otherwise the entry is looked up by
// LocalID, and skipped if that ID is now missing or ambiguous. Empty strings
// and entries past the end of improved keep their description.
func MergeDescriptions(current, sent []model.WorkExperience, improved []string) []model.WorkExperience {
	out := make([]model.WorkExperience, len(current))
	copy(out, current)
	positions := make(map[model.LocalID][]int, len(out))
	for i, e := range out {
		positions[e.ID] = append(positions[e.ID], i)
	}
	for i, entry := range sent {
		if i >= len(improved) || improved[i] == "" {
			continue
		}
		target := -1
		switch {
		case i < len(out) && out[i].ID == entry.ID:
			target = i
		case len(positions[entry.ID]) == 1:
			target = positions[entry.ID][0]
		}
		if target >= 0 {
			out[target].Description = improved[i]
		}
	}
	return out
}

// StripQuotes removes exactly one pair of surrounding double quotes from
// single-line text. Text spanning several lines is returned unchanged.
func StripQuotes(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "\n\r\u2028\u2029") {
		return s
	}
	return inner
}

// InFlight reports whether a call for field is pending on ctrl.
func (a *Adapter) InFlight(ctrl *form.Controller, field Field) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[guardKey{ctrl, field}]
	return ok
}

// Forget drops any guard state held for ctrl.
func (a *Adapter) Forget(ctrl *form.Controller) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k := range a.pending {
		if k.ctrl == ctrl {
			delete(a.pending, k)
		}
	}
}

func (a *Adapter) acquire(ctrl *form.Controller, field Field) (func(), error) {
	key := guardKey{ctrl, field}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.pending[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrInFlight, field)
	}
	a.pending[key] = struct{}{}
	return func() {
		a.mu.Lock()
		delete(a.pending, key)
		a.mu.Unlock()
	}, nil
}

func busyResult(ctrl *form.Controller) Result {
	return Result{
		Notice: Notice{Level: LevelWarning, Message: "An improvement is already in progress"},
		Draft:  ctrl.Draft(),
	}
}

func failed(d model.Draft, msg string) Result {
	return Result{Notice: Notice{Level: LevelError, Message: msg}, Draft: d}
}
