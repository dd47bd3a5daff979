// Package editor hosts resume editing sessions: one form controller per
// session, with augmentation, preview, save and export wired around it.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/extract"
	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/augment"
	"resume-builder/resume/cascade"
	"resume-builder/resume/form"
	"resume-builder/resume/location"
	"resume-builder/resume/model"
	"resume-builder/resume/preview"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPDFDisabled       = errors.New("pdf export is not enabled")
	ErrStoreDisabled     = errors.New("export storage is not configured")
)

// Format is an export file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return object.ContentTypeFor("export." + string(f))
}

// ParseFormat accepts html, docx or pdf in any case.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatHTML, FormatDOCX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

// PDFRenderer turns a projected preview into PDF bytes.
type PDFRenderer interface {
	Export(ctx context.Context, p preview.Preview) ([]byte, error)
}

// Config wires the service's collaborators. Improver, Store and PDF are optional.
type Config struct {
	Gateway   gateway.Gateway
	Improver  augment.Improver
	Locations *location.Index
	Store     object.ObjectStore
	PDF       PDFRenderer
	Now       func() time.Time
}

type session struct {
	id      string
	owner   string
	ctrl    *form.Controller
	touched time.Time
}

// Service owns the live editing sessions.
type Service struct {
	gw       gateway.Gateway
	adapter  *augment.Adapter
	resolver cascade.Resolver
	index    *location.Index
	store    object.ObjectStore
	pdf      PDFRenderer
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService builds a service from cfg. A nil location index falls back to the
// embedded dataset.
func NewService(cfg Config) *Service {
	idx := cfg.Locations
	if idx == nil {
		idx = location.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		gw:       cfg.Gateway,
		adapter:  augment.NewAdapter(cfg.Improver),
		resolver: cascade.New(idx),
		index:    idx,
		store:    cfg.Store,
		pdf:      cfg.PDF,
		now:      now,
		sessions: map[string]*session{},
	}
}

// View is a session's current state.
type View struct {
	SessionID string      `json:"sessionId"`
	Revision  uint64      `json:"revision"`
	Draft     model.Draft `json:"draft"`
	// SkillsText is the skills list as the one-per-line text block the form edits.
	SkillsText string `json:"skillsText"`
}

// Outcome is the result of a command: the new state and an optional notice.
type Outcome struct {
	View
	// Command is the wire name of the command that was dispatched.
	Command string          `json:"command"`
	Notice  *augment.Notice `json:"notice,omitempty"`
}

// New starts a session on a blank draft.
func (s *Service) New(owner string) View {
	return s.start(owner, model.NewDraft())
}

// Open starts a session hydrated from a stored resume.
func (s *Service) Open(ctx context.Context, owner, documentID string) (View, error) {
	doc, err := s.gw.Get(ctx, owner, documentID)
	if err != nil {
		return View{}, err
	}
	if doc.Type != model.TypeResume || doc.Resume == nil {
		return View{}, fmt.Errorf("%w: document %s is a %s", gateway.ErrInvalidInput, documentID, doc.Type)
	}
	d := model.DraftFromResume(*doc.Resume)
	d.DocumentID = documentID
	return s.start(owner, d), nil
}

func (s *Service) start(owner string, d model.Draft) View {
	sess := &session{
		id:      uuid.NewString(),
		owner:   owner,
		ctrl:    form.NewController(d),
		touched: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.SetSessionsOpen(n)
	telemetry.Info("editor.session.start", map[string]any{
		"session_id":  sess.id,
		"user_id":     owner,
		"document_id": d.DocumentID,
	})
	return view(sess)
}

func view(sess *session) View {
	d, rev := sess.ctrl.Snapshot()
	return View{SessionID: sess.id, Revision: rev, Draft: d, SkillsText: form.JoinSkills(d.Skills)}
}

func (s *Service) lookup(owner, id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return nil, ErrSessionNotFound
	}
	sess.touched = s.now()
	return sess, nil
}

// Get returns the session's current state.
func (s *Service) Get(owner, id string) (View, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return View{}, err
	}
	return view(sess), nil
}

// Discard ends a session without saving.
func (s *Service) Discard(owner, id string) error {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.adapter.Forget(sess.ctrl)
	metrics.SetSessionsOpen(n)
	return nil
}

// Prune drops sessions idle for longer than maxIdle and returns how many.
func (s *Service) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	var dropped []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			dropped = append(dropped, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	for _, sess := range dropped {
		s.adapter.Forget(sess.ctrl)
	}
	metrics.SetSessionsOpen(n)
	return len(dropped)
}

// Summary describes one open session in a listing.
type Summary struct {
	SessionID  string    `json:"sessionId"`
	DocumentID string    `json:"documentId,omitempty"`
	Title      string    `json:"title"`
	Revision   uint64    `json:"revision"`
	LastUsed   time.Time `json:"lastUsed"`
}

// Sessions lists the owner's open sessions, most recently used first.
func (s *Service) Sessions(owner string) []Summary {
	s.mu.Lock()
	owned := make([]*session, 0)
	touched := make(map[*session]time.Time)
	for _, sess := range s.sessions {
		if sess.owner == owner {
			owned = append(owned, sess)
			touched[sess] = sess.touched
		}
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(owned))
	for _, sess := range owned {
		d, rev := sess.ctrl.Snapshot()
		out = append(out, Summary{
			SessionID:  sess.id,
			DocumentID: d.DocumentID,
			Title:      d.Title,
			Revision:   rev,
			LastUsed:   touched[sess],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastUsed.Equal(out[j].LastUsed) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	return out
}

// Dispatch applies one form command. The minimum-entries rule is reported as
// a warning notice with the unchanged draft, not as an error.
func (s *Service) Dispatch(owner, id string, cmd form.Command) (Outcome, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return Outcome{}, err
	}
	_, err = sess.ctrl.Dispatch(cmd)
	out := Outcome{View: view(sess), Command: form.Kind(cmd)}
	if w, ok := form.AsWarning(err); ok {
		out.Notice = &augment.Notice{Level: augment.LevelWarning, Message: w.Message}
		return out, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Preview projects the session's current draft.
func (s *Service) Preview(owner, id string) (preview.Preview, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return preview.Preview{}, err
	}
	return preview.Project(sess.ctrl.Draft()), nil
}

// Options derives the cascading location choices for personal info (empty
// list) or for one list entry.
func (s *Service) Options(owner, id string, list form.ListKind, index int) (cascade.Options, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return cascade.Options{}, err
	}
	d := sess.ctrl.Draft()
	var loc model.Location
	switch list {
	case "", "personalInfo":
		loc = d.PersonalInfo.Location
	case form.ListWorkExperience:
		if index < 0 || index >= len(d.WorkExperience) {
			return cascade.Options{}, form.ErrIndexOutOfRange
		}
		loc = d.WorkExperience[index].Location
	case form.ListEducation:
		if index < 0 || index >= len(d.Education) {
			return cascade.Options{}, form.ErrIndexOutOfRange
		}
		loc = d.Education[index].Location
	default:
		return cascade.Options{}, fmt.Errorf("%w: %q", form.ErrUnknownList, list)
	}
	return s.resolver.Options(loc), nil
}

// Countries lists the location dataset's countries.
func (s *Service) Countries() []location.Country {
	return s.index.Countries()
}

// ImproveSummary runs the summary augmentation on the session.
func (s *Service) ImproveSummary(ctx context.Context, owner, id string) (augment.Result, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return augment.Result{}, err
	}
	return s.improve(ctx, sess, augment.FieldSummary, s.adapter.ImproveSummary)
}

// ImproveResponsibilities runs the responsibilities augmentation on the session.
func (s *Service) ImproveResponsibilities(ctx context.Context, owner, id string) (augment.Result, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return augment.Result{}, err
	}
	return s.improve(ctx, sess, augment.FieldResponsibilities, s.adapter.ImproveResponsibilities)
}

// improve resolves upstream failures into a notice. In-flight and
// not-configured errors are returned so the caller can map them.
func (s *Service) improve(ctx context.Context, sess *session, field augment.Field, call func(context.Context, *form.Controller) (augment.Result, error)) (augment.Result, error) {
	metrics.IncAugmentStarted(string(field))
	start := time.Now()
	res, err := call(ctx, sess.ctrl)
	elapsed := time.Since(start)
	metrics.ObserveAugmentDurationMs(float64(elapsed.Milliseconds()))

	fields := map[string]any{
		"session_id":  sess.id,
		"user_id":     sess.owner,
		"field":       string(field),
		"duration_ms": elapsed.Milliseconds(),
	}
	switch {
	case err == nil:
		metrics.IncAugmentCompleted(string(field))
		fields["outcome"] = "applied"
		telemetry.Info("editor.augment", fields)
		return res, nil
	case errors.Is(err, augment.ErrInFlight):
		fields["outcome"] = "busy"
		telemetry.Warn("editor.augment", fields)
		return res, err
	case errors.Is(err, augment.ErrAugmentFailed):
		metrics.IncAugmentFailed(string(field))
		fields["outcome"] = "failed"
		fields["err"] = err.Error()
		telemetry.Error("editor.augment", fields)
		return res, nil
	default:
		metrics.IncAugmentFailed(string(field))
		fields["outcome"] = "error"
		fields["err"] = err.Error()
		telemetry.Error("editor.augment", fields)
		return res, err
	}
}

// SaveResult reports a save attempt.
type SaveResult struct {
	Saved      bool           `json:"saved"`
	Created    bool           `json:"created"`
	DocumentID string         `json:"documentId,omitempty"`
	Notice     augment.Notice `json:"notice"`
	Draft      model.Draft    `json:"draft"`
}

// Save validates the draft and creates or updates the stored resume.
// Validation failures are returned as *model.ValidationError before any
// gateway call. Gateway failures resolve to an error notice.
func (s *Service) Save(ctx context.Context, owner, id string) (SaveResult, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return SaveResult{}, err
	}
	d := sess.ctrl.Draft()
	if err := model.Validate(d); err != nil {
		metrics.IncSave("invalid")
		return SaveResult{Draft: d}, err
	}

	doc := model.ResumeDocument(d.ToResume())
	fields := map[string]any{"session_id": sess.id, "user_id": owner}
	created := d.DocumentID == ""
	docID := d.DocumentID
	if created {
		docID, err = s.gw.Create(ctx, owner, doc)
	} else {
		err = s.gw.Update(ctx, owner, docID, doc)
	}
	fields["document_id"] = docID
	if err != nil {
		metrics.IncSave("failed")
		fields["err"] = err.Error()
		telemetry.Error("editor.save failed", fields)
		return SaveResult{
			DocumentID: d.DocumentID,
			Notice:     augment.Notice{Level: augment.LevelError, Message: "Failed to save resume"},
			Draft:      d,
		}, nil
	}

	if created {
		sess.ctrl.SetDocumentID(docID)
		metrics.IncSave("created")
	} else {
		metrics.IncSave("updated")
	}
	telemetry.Info("editor.save", fields)
	msg := "Resume updated successfully!"
	if created {
		msg = "Resume created successfully!"
	}
	return SaveResult{
		Saved:      true,
		Created:    created,
		DocumentID: docID,
		Notice:     augment.Notice{Level: augment.LevelSuccess, Message: msg},
		Draft:      sess.ctrl.Draft(),
	}, nil
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Stored is set when the file was archived in the object store.
	Stored *object.Object
}

// Export renders the session's draft as f.
func (s *Service) Export(ctx context.Context, owner, id string, f Format) (File, error) {
	sess, err := s.lookup(owner, id)
	if err != nil {
		return File{}, err
	}
	d := sess.ctrl.Draft()
	return s.render(ctx, owner, preview.Project(d), fileLabel(d.Title, "resume"), f)
}

// ExportDocument renders a stored resume or cover letter as f.
func (s *Service) ExportDocument(ctx context.Context, owner, documentID string, f Format) (File, error) {
	doc, err := s.gw.Get(ctx, owner, documentID)
	if err != nil {
		return File{}, err
	}
	switch {
	case doc.Resume != nil:
		d := model.DraftFromResume(*doc.Resume)
		return s.render(ctx, owner, preview.Project(d), fileLabel(d.Title, "resume"), f)
	case doc.CoverLetter != nil:
		return s.render(ctx, owner, preview.ProjectCoverLetter(*doc.CoverLetter), fileLabel(doc.Label(), "cover-letter"), f)
	}
	return File{}, fmt.Errorf("%w: empty document", gateway.ErrInvalidInput)
}

func (s *Service) render(ctx context.Context, owner string, p preview.Preview, label string, f Format) (File, error) {
	start := time.Now()
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatHTML:
		data, err = preview.HTML(p)
	case FormatDOCX:
		data, err = preview.RenderDOCX(p)
	case FormatPDF:
		if s.pdf == nil {
			return File{}, ErrPDFDisabled
		}
		data, err = s.pdf.Export(ctx, p)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return File{}, fmt.Errorf("render %s: %w", f, err)
	}
	metrics.IncExport(string(f))
	metrics.ObserveExportDurationMs(float64(time.Since(start).Milliseconds()))

	file := File{Name: label + "." + string(f), ContentType: f.ContentType(), Data: data}
	if s.store != nil && f != FormatHTML {
		obj, err := s.store.Put(ctx, owner, file.Name, file.ContentType, bytes.NewReader(data))
		if err != nil {
			telemetry.Warn("editor.export.store failed", map[string]any{"user_id": owner, "err": err.Error()})
		} else {
			file.Stored = &obj
		}
	}
	return file, nil
}

// fileLabel turns a title into a safe file name stem.
func fileLabel(title, fallback string) string {
	name, err := util.SanitizeFileName(title)
	if err != nil {
		return fallback
	}
	return name
}

// OpenExport opens one of owner's stored exports.
func (s *Service) OpenExport(ctx context.Context, owner, key string) (io.ReadCloser, object.Object, error) {
	key, err := s.ownedKey(owner, key)
	if err != nil {
		return nil, object.Object{}, err
	}
	return s.store.Open(ctx, key)
}

// ExportText reads one of owner's stored exports back as text lines.
func (s *Service) ExportText(ctx context.Context, owner, key string) ([]string, error) {
	key, err := s.ownedKey(owner, key)
	if err != nil {
		return nil, err
	}
	return extract.FromStore(ctx, s.store, key)
}

// DeleteExport removes one of owner's stored exports.
func (s *Service) DeleteExport(ctx context.Context, owner, key string) error {
	key, err := s.ownedKey(owner, key)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	telemetry.Info("editor.export deleted", map[string]any{"user_id": owner, "key": key})
	return nil
}

// ownedKey cleans key and hides exports outside owner's namespace.
func (s *Service) ownedKey(owner, key string) (string, error) {
	if s.store == nil {
		return "", ErrStoreDisabled
	}
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", err
	}
	if !object.OwnedBy(clean, owner) {
		return "", fmt.Errorf("%w: %s", object.ErrNotFound, clean)
	}
	return clean, nil
}
