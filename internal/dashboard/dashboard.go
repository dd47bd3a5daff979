// Package dashboard lists an owner's documents with type and text filters.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// TypeAll selects every document type.
const TypeAll model.DocumentType = ""

// Filter narrows a document list.
type Filter struct {
	Type  model.DocumentType `form:"type" json:"type"`
	Query string             `form:"q" json:"query"`
}

// Notice is a user-facing message about a list operation.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Page is what the list view renders.
type Page struct {
	Documents []model.Document `json:"documents"`
	Notice    *Notice          `json:"notice,omitempty"`
}

// Apply returns the documents matching f, preserving order.
func Apply(docs []model.Document, f Filter) []model.Document {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if f.Type != TypeAll && doc.Type != f.Type {
			continue
		}
		if query != "" && !matches(doc, query) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func matches(doc model.Document, query string) bool {
	var fields []string
	switch {
	case doc.Resume != nil:
		fields = []string{doc.Resume.Title}
	case doc.CoverLetter != nil:
		fields = []string{doc.CoverLetter.CompanyName, doc.CoverLetter.JobTitle}
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Service loads and mutates the list through a gateway.
type Service struct {
	gw    gateway.Gateway
	loads singleflight.Group
}

// NewService returns a dashboard service over gw.
func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Load fetches the owner's documents and applies f. Concurrent loads for the
// same owner and type share one gateway round trip. The shared fetch is
// detached from any single caller, so a caller that gives up only stops
// waiting for itself.
func (s *Service) Load(ctx context.Context, owner string, f Filter) ([]model.Document, error) {
	if f.Type != TypeAll && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: document type %q", gateway.ErrInvalidInput, f.Type)
	}
	ch := s.loads.DoChan(loadKey(owner, f.Type), func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), owner, f.Type)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return Apply(res.Val.([]model.Document), f), nil
	}
}

func loadKey(owner string, t model.DocumentType) string {
	return owner + "\x00" + string(t)
}

func (s *Service) fetch(ctx context.Context, owner string, t model.DocumentType) ([]model.Document, error) {
	if t != TypeAll {
		return s.gw.List(ctx, owner, t)
	}
	var resumes, letters []model.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.gw.List(gctx, owner, model.TypeResume)
		resumes = docs
		return err
	})
	g.Go(func() error {
		docs, err := s.gw.List(gctx, owner, model.TypeCoverLetter)
		letters = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	all := append(append(make([]model.Document, 0, len(resumes)+len(letters)), resumes...), letters...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt().After(all[j].UpdatedAt())
	})
	return all, nil
}

// Delete removes a document and reloads the list. Nothing is dropped from the
// list unless the gateway confirms the delete; on failure the reloaded list is
// returned with an error notice. The reload never joins a load that started
// before the delete.
func (s *Service) Delete(ctx context.Context, owner, id string, f Filter) (Page, error) {
	if f.Type != TypeAll && !f.Type.Valid() {
		return Page{}, fmt.Errorf("%w: document type %q", gateway.ErrInvalidInput, f.Type)
	}
	delErr := s.gw.Delete(ctx, owner, id)
	for _, t := range []model.DocumentType{TypeAll, model.TypeResume, model.TypeCoverLetter} {
		s.loads.Forget(loadKey(owner, t))
	}
	docs, err := s.fetch(ctx, owner, f.Type)
	if err != nil {
		return Page{}, err
	}
	page := Page{Documents: Apply(docs, f)}
	if delErr != nil {
		telemetry.Error("document delete failed", map[string]any{
			"owner":       owner,
			"document_id": id,
			"err":         delErr.Error(),
		})
		page.Notice = &Notice{Level: "error", Message: "Failed to delete document"}
		return page, nil
	}
	page.Notice = &Notice{Level: "success", Message: "Document deleted"}
	return page, nil
}
