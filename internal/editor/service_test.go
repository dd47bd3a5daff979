package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/resume/augment"
	"resume-builder/resume/form"
	"resume-builder/resume/model"
	"resume-builder/resume/preview"
)

type fakeImprover struct {
	summary string
	lines   []string
	err     error
}

func (f *fakeImprover) ImproveSummary(ctx context.Context, summary, description string) (string, error) {
	return f.summary, f.err
}

func (f *fakeImprover) ImproveResponsibilities(ctx context.Context, entries []model.WorkExperience) ([]string, error) {
	return f.lines, f.err
}

type failingGateway struct {
	gateway.Gateway
}

func (failingGateway) Create(ctx context.Context, owner string, doc model.Document) (string, error) {
	return "", errors.New("backend unavailable")
}

type countingGateway struct {
	gateway.Gateway
	mu      sync.Mutex
	creates int
	updates int
}

func (g *countingGateway) Create(ctx context.Context, owner string, doc model.Document) (string, error) {
	g.mu.Lock()
	g.creates++
	g.mu.Unlock()
	return g.Gateway.Create(ctx, owner, doc)
}

func (g *countingGateway) Update(ctx context.Context, owner, id string, doc model.Document) error {
	g.mu.Lock()
	g.updates++
	g.mu.Unlock()
	return g.Gateway.Update(ctx, owner, id, doc)
}

func sampleResume() model.Resume {
	return model.Resume{
		Title: "Backend Engineer",
		PersonalInfo: model.PersonalInfo{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+1 555 0100",
			Location: model.Location{Country: "US", State: "California", City: "San Francisco"},
		},
		Summary:     "Engineer",
		Description: "Senior backend role",
		WorkExperience: []model.WorkExperience{{
			ID:          "w1",
			CompanyName: "Acme",
			Position:    "Engineer",
			StartDate:   "2020-01-01",
			IsCurrent:   true,
			Description: "Built APIs",
		}},
		Education: []model.Education{{
			ID:          "e1",
			Institution: "State University",
			Degree:      "BSc",
			StartDate:   "2014-09-01",
			EndDate:     "2018-06-01",
		}},
		Skills: []string{"Go", "SQL"},
	}
}

func seed(t *testing.T, gw gateway.Gateway, owner string) string {
	t.Helper()
	id, err := gw.Create(context.Background(), owner, model.ResumeDocument(sampleResume()))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return id
}

func TestNewSessionAndDispatch(t *testing.T) {
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo()})
	v := svc.New("user-1")
	if v.SessionID == "" || len(v.Draft.WorkExperience) != 1 || len(v.Draft.Education) != 1 {
		t.Fatalf("unexpected blank session %+v", v)
	}

	out, err := svc.Dispatch("user-1", v.SessionID, form.SetField{Field: form.FieldTitle, Value: "Platform"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if out.Draft.Title != "Platform" || out.Revision != v.Revision+1 || out.Notice != nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Command != "setField" {
		t.Fatalf("unexpected command name %q", out.Command)
	}

	out, err = svc.Dispatch("user-1", v.SessionID, form.SetSkills{Text: "Go\n\n  Rust "})
	if err != nil {
		t.Fatalf("dispatch skills: %v", err)
	}
	if out.Command != "setSkills" || out.SkillsText != "Go\nRust" {
		t.Fatalf("unexpected skills outcome %q %q", out.Command, out.SkillsText)
	}
}

func TestDispatchMinimumEntriesIsWarning(t *testing.T) {
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo()})
	v := svc.New("user-1")

	out, err := svc.Dispatch("user-1", v.SessionID, form.RemoveListItem{List: form.ListWorkExperience, Index: 0})
	if err != nil {
		t.Fatalf("expected warning without error, got %v", err)
	}
	if out.Notice == nil || out.Notice.Level != augment.LevelWarning {
		t.Fatalf("expected warning notice, got %+v", out.Notice)
	}
	if len(out.Draft.WorkExperience) != 1 || out.Revision != v.Revision {
		t.Fatalf("draft should be unchanged, got %+v", out)
	}
}

func TestDispatchInvalidIndexIsError(t *testing.T) {
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo()})
	v := svc.New("user-1")
	_, err := svc.Dispatch("user-1", v.SessionID, form.SetListItem{List: form.ListEducation, Index: 4, Field: "degree", Value: "MSc"})
	if !errors.Is(err, form.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo()})
	v := svc.New("user-1")
	if _, err := svc.Get("user-2", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Discard("user-1", v.SessionID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := svc.Get("user-1", v.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected discarded session to be gone, got %v", err)
	}
}

func TestOpenHydratesResume(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id := seed(t, gw, "user-1")
	svc := NewService(Config{Gateway: gw})

	v, err := svc.Open(context.Background(), "user-1", id)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if v.Draft.DocumentID != id || v.Draft.Title != "Backend Engineer" {
		t.Fatalf("unexpected draft %+v", v.Draft)
	}
	if _, err := svc.Open(context.Background(), "user-2", id); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestOpenRejectsCoverLetter(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id, err := gw.Create(context.Background(), "user-1", model.CoverLetterDocument(model.CoverLetter{
		CompanyName: "Acme", JobTitle: "Engineer", WritingTone: model.ToneProfessional,
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	svc := NewService(Config{Gateway: gw})
	if _, err := svc.Open(context.Background(), "user-1", id); !errors.Is(err, gateway.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSaveInvalidDraftSkipsGateway(t *testing.T) {
	gw := &countingGateway{Gateway: gateway.NewMemoryRepo()}
	svc := NewService(Config{Gateway: gw})
	v := svc.New("user-1")

	res, err := svc.Save(context.Background(), "user-1", v.SessionID)
	ve, ok := model.AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !ve.Has("title") || !ve.Has("personalInfo.email") {
		t.Fatalf("unexpected fields %+v", ve.Fields)
	}
	if res.Saved || gw.creates != 0 || gw.updates != 0 {
		t.Fatalf("gateway should not be called: %+v creates=%d updates=%d", res, gw.creates, gw.updates)
	}
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	repo := gateway.NewMemoryRepo()
	gw := &countingGateway{Gateway: repo}
	seeded := seed(t, repo, "seed-owner")
	svc := NewService(Config{Gateway: gw})

	doc, err := repo.Get(context.Background(), "seed-owner", seeded)
	if err != nil {
		t.Fatalf("get seed: %v", err)
	}
	v := svc.New("user-1")
	sess, _ := svc.lookup("user-1", v.SessionID)
	d := model.DraftFromResume(*doc.Resume)
	d.DocumentID = ""
	sess.ctrl.Replace(d)

	first, err := svc.Save(context.Background(), "user-1", v.SessionID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !first.Saved || !first.Created || first.DocumentID == "" {
		t.Fatalf("unexpected first save %+v", first)
	}
	if first.Draft.DocumentID != first.DocumentID {
		t.Fatalf("draft should remember document id, got %q", first.Draft.DocumentID)
	}

	second, err := svc.Save(context.Background(), "user-1", v.SessionID)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !second.Saved || second.Created || second.DocumentID != first.DocumentID {
		t.Fatalf("unexpected second save %+v", second)
	}
	if gw.creates != 1 || gw.updates != 1 {
		t.Fatalf("expected one create and one update, got %d/%d", gw.creates, gw.updates)
	}
	if second.Notice.Message != "Resume updated successfully!" {
		t.Fatalf("unexpected notice %+v", second.Notice)
	}
}

func TestSaveGatewayFailureIsNotice(t *testing.T) {
	repo := gateway.NewMemoryRepo()
	id := seed(t, repo, "user-1")
	doc, _ := repo.Get(context.Background(), "user-1", id)

	svc := NewService(Config{Gateway: failingGateway{Gateway: repo}})
	v := svc.New("user-1")
	sess, _ := svc.lookup("user-1", v.SessionID)
	d := model.DraftFromResume(*doc.Resume)
	d.DocumentID = ""
	sess.ctrl.Replace(d)

	res, err := svc.Save(context.Background(), "user-1", v.SessionID)
	if err != nil {
		t.Fatalf("expected notice, got error %v", err)
	}
	if res.Saved || res.Notice.Level != augment.LevelError || res.DocumentID != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestImproveSummary(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id := seed(t, gw, "user-1")
	svc := NewService(Config{Gateway: gw, Improver: &fakeImprover{summary: `"Seasoned engineer"`}})
	v, _ := svc.Open(context.Background(), "user-1", id)

	res, err := svc.ImproveSummary(context.Background(), "user-1", v.SessionID)
	if err != nil {
		t.Fatalf("improve: %v", err)
	}
	if !res.Applied || res.Draft.Summary != "Seasoned engineer" {
		t.Fatalf("unexpected result %+v", res)
	}
	got, _ := svc.Get("user-1", v.SessionID)
	if got.Draft.Summary != "Seasoned engineer" {
		t.Fatalf("session not updated: %q", got.Draft.Summary)
	}
}

func TestImproveFailureIsNotice(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id := seed(t, gw, "user-1")
	svc := NewService(Config{Gateway: gw, Improver: &fakeImprover{err: errors.New("upstream 500")}})
	v, _ := svc.Open(context.Background(), "user-1", id)

	res, err := svc.ImproveResponsibilities(context.Background(), "user-1", v.SessionID)
	if err != nil {
		t.Fatalf("expected notice, got %v", err)
	}
	if res.Applied || res.Notice.Level != augment.LevelError {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Draft.WorkExperience[0].Description != "Built APIs" {
		t.Fatalf("draft should be untouched, got %q", res.Draft.WorkExperience[0].Description)
	}
}

func TestImproveWithoutImprover(t *testing.T) {
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo()})
	v := svc.New("user-1")
	if _, err := svc.ImproveSummary(context.Background(), "user-1", v.SessionID); !errors.Is(err, augment.ErrNoImprover) {
		t.Fatalf("expected ErrNoImprover, got %v", err)
	}
}

func TestOptionsFollowSelection(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id := seed(t, gw, "user-1")
	svc := NewService(Config{Gateway: gw})
	v, _ := svc.Open(context.Background(), "user-1", id)

	opts, err := svc.Options("user-1", v.SessionID, "", 0)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts.Countries) == 0 {
		t.Fatalf("expected countries")
	}
	if _, err := svc.Options("user-1", v.SessionID, form.ListWorkExperience, 3); !errors.Is(err, form.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := svc.Options("user-1", v.SessionID, form.ListCertifications, 0); !errors.Is(err, form.ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestExportFormats(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id := seed(t, gw, "user-1")
	store := local.New(t.TempDir())
	svc := NewService(Config{Gateway: gw, Store: store})
	v, _ := svc.Open(context.Background(), "user-1", id)
	ctx := context.Background()

	docx, err := svc.Export(ctx, "user-1", v.SessionID, FormatDOCX)
	if err != nil {
		t.Fatalf("docx export: %v", err)
	}
	if docx.Name != "Backend Engineer.docx" || docx.Stored == nil {
		t.Fatalf("unexpected docx file %+v", docx)
	}
	kinds, err := preview.Sections(docx.Data)
	if err != nil {
		t.Fatalf("read docx: %v", err)
	}
	if len(kinds) == 0 || kinds[0] != preview.SectionSummary {
		t.Fatalf("unexpected sections %v", kinds)
	}
	rc, meta, err := svc.OpenExport(ctx, "user-1", docx.Stored.Key)
	if err != nil {
		t.Fatalf("open stored export: %v", err)
	}
	stored, _ := io.ReadAll(rc)
	rc.Close()
	if len(stored) != len(docx.Data) || meta.Size != int64(len(docx.Data)) {
		t.Fatalf("stored %d bytes (meta %d), rendered %d", len(stored), meta.Size, len(docx.Data))
	}
	if meta.FileName != "Backend Engineer.docx" {
		t.Fatalf("unexpected stored name %q", meta.FileName)
	}
	if _, _, err := svc.OpenExport(ctx, "user-2", docx.Stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected other owner to get ErrNotFound, got %v", err)
	}
	if err := svc.DeleteExport(ctx, "user-1", docx.Stored.Key); err != nil {
		t.Fatalf("delete export: %v", err)
	}
	if _, err := svc.ExportText(ctx, "user-1", docx.Stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected deleted export to be gone, got %v", err)
	}

	html, err := svc.Export(ctx, "user-1", v.SessionID, FormatHTML)
	if err != nil {
		t.Fatalf("html export: %v", err)
	}
	if html.Stored != nil || !strings.Contains(string(html.Data), "Ada Lovelace") {
		t.Fatalf("unexpected html export %+v", html.Stored)
	}

	if _, err := svc.Export(ctx, "user-1", v.SessionID, FormatPDF); !errors.Is(err, ErrPDFDisabled) {
		t.Fatalf("expected ErrPDFDisabled, got %v", err)
	}
}

func TestExportDocumentCoverLetter(t *testing.T) {
	gw := gateway.NewMemoryRepo()
	id, err := gw.Create(context.Background(), "user-1", model.CoverLetterDocument(model.CoverLetter{
		RecipientName: "Grace",
		CompanyName:   "Acme",
		JobTitle:      "Staff Engineer",
		Content:       "First paragraph.\n\nSecond paragraph.",
		WritingTone:   model.ToneFriendly,
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	svc := NewService(Config{Gateway: gw})

	file, err := svc.ExportDocument(context.Background(), "user-1", id, FormatHTML)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if file.Name != "Staff Engineer at Acme.html" || !strings.Contains(string(file.Data), "Second paragraph.") {
		t.Fatalf("unexpected export %s", file.Name)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Fatalf("unexpected %q %v", f, err)
	}
	if _, err := ParseFormat("rtf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPruneDropsIdleSessions(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo(), Now: func() time.Time { return now }})
	stale := svc.New("user-1")
	now = now.Add(time.Hour)
	fresh := svc.New("user-1")

	if n := svc.Prune(30 * time.Minute); n != 1 {
		t.Fatalf("expected one pruned session, got %d", n)
	}
	if _, err := svc.Get("user-1", stale.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("stale session should be gone, got %v", err)
	}
	if _, err := svc.Get("user-1", fresh.SessionID); err != nil {
		t.Fatalf("fresh session should remain: %v", err)
	}
}

func TestSessionsListsOwnerMostRecentFirst(t *testing.T) {
	now := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(Config{Gateway: gateway.NewMemoryRepo(), Now: func() time.Time { return now }})

	older := svc.New("owner-1")
	now = now.Add(time.Minute)
	newer := svc.New("owner-1")
	svc.New("owner-2")

	got := svc.Sessions("owner-1")
	if len(got) != 2 || got[0].SessionID != newer.SessionID || got[1].SessionID != older.SessionID {
		t.Fatalf("unexpected order %+v", got)
	}

	now = now.Add(time.Minute)
	if _, err := svc.Get("owner-1", older.SessionID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := svc.Sessions("owner-1"); got[0].SessionID != older.SessionID {
		t.Fatalf("expected touched session first, got %+v", got)
	}
}
