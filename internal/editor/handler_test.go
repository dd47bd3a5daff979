package editor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/editor"
	"resume-builder/internal/shared/config"
	"resume-builder/resume/model"
)

type stubImprover struct{}

func (stubImprover) ImproveSummary(ctx context.Context, summary, description string) (string, error) {
	return "Improved: " + summary, nil
}

func (stubImprover) ImproveResponsibilities(ctx context.Context, entries []model.WorkExperience) ([]string, error) {
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = "- Led delivery"
	}
	return out, nil
}

type draftView struct {
	SessionID string      `json:"sessionId"`
	Revision  uint64      `json:"revision"`
	Draft     model.Draft `json:"draft"`
	Notice    *struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notice"`
}

func testConfig(t *testing.T, provider string) config.Config {
	return config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		Gateway:         "memory",
		AugmentProvider: provider,
		ObjectStoreType: "local",
	}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.BuildWith(testConfig(t, "none"), bootstrap.Overrides{Improver: stubImprover{}})
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, resp.Body.String())
	}
}

func newDraft(t *testing.T, router http.Handler) string {
	t.Helper()
	resp := do(t, router, http.MethodPost, "/api/v1/drafts", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var v draftView
	decode(t, resp, &v)
	if v.SessionID == "" {
		t.Fatalf("expected session id")
	}
	return v.SessionID
}

func fillDraft(t *testing.T, router http.Handler, id string) {
	t.Helper()
	commands := []map[string]any{
		{"type": "setField", "field": "title", "value": "Platform"},
		{"type": "setField", "field": "summary", "value": "Engineer"},
		{"type": "setPersonalInfo", "patch": map[string]any{"name": "Ada", "email": "ada@example.com", "phone": "555", "country": "US"}},
		{"type": "setListItem", "list": "workExperience", "index": 0, "field": "companyName", "value": "Acme"},
		{"type": "setListItem", "list": "workExperience", "index": 0, "field": "position", "value": "Engineer"},
		{"type": "setListItem", "list": "workExperience", "index": 0, "field": "startDate", "value": "2020-01-01"},
		{"type": "setListItem", "list": "workExperience", "index": 0, "field": "isCurrent", "value": true},
		{"type": "setListItem", "list": "education", "index": 0, "field": "institution", "value": "State University"},
		{"type": "setListItem", "list": "education", "index": 0, "field": "degree", "value": "BSc"},
		{"type": "setListItem", "list": "education", "index": 0, "field": "startDate", "value": "2014-09-01"},
		{"type": "setSkills", "text": "Go\n\nSQL"},
	}
	for _, cmd := range commands {
		resp := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/commands", cmd)
		if resp.Code != http.StatusOK {
			t.Fatalf("command %v: expected 200, got %d (%s)", cmd["type"], resp.Code, resp.Body.String())
		}
	}
}

func TestDraftLifecycle(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)
	fillDraft(t, router, id)

	resp := do(t, router, http.MethodGet, "/api/v1/drafts/"+id, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var v draftView
	decode(t, resp, &v)
	if v.Draft.Title != "Platform" || len(v.Draft.Skills) != 2 || !v.Draft.WorkExperience[0].IsCurrent {
		t.Fatalf("unexpected draft %+v", v.Draft)
	}

	resp = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/save", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	var saved struct {
		Saved      bool   `json:"saved"`
		DocumentID string `json:"documentId"`
	}
	decode(t, resp, &saved)
	if !saved.Saved || saved.DocumentID == "" {
		t.Fatalf("unexpected save %+v", saved)
	}

	resp = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/save", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 on update, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/documents?type=resume&q=plat", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var page struct {
		Documents []model.Document `json:"documents"`
	}
	decode(t, resp, &page)
	if len(page.Documents) != 1 || page.Documents[0].ID() != saved.DocumentID {
		t.Fatalf("unexpected documents %+v", page.Documents)
	}

	resp = do(t, router, http.MethodDelete, "/api/v1/drafts/"+id, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}

	resp = do(t, router, http.MethodPost, "/api/v1/drafts/open/"+saved.DocumentID, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201 on open, got %d", resp.Code)
	}
	decode(t, resp, &v)
	if v.Draft.DocumentID != saved.DocumentID || v.Draft.PersonalInfo.Email != "ada@example.com" {
		t.Fatalf("unexpected reopened draft %+v", v.Draft)
	}
}

func TestSaveInvalidDraftReturns422(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)

	resp := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/save", nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code    string             `json:"code"`
			Details []model.FieldError `json:"details"`
		} `json:"error"`
	}
	decode(t, resp, &body)
	if body.Error.Code != "validation_error" || len(body.Error.Details) == 0 {
		t.Fatalf("unexpected error body %s", resp.Body.String())
	}
}

func TestRemovingLastEntryWarns(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)

	resp := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/commands", map[string]any{"type": "removeListItem", "list": "education", "index": 0})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var v draftView
	decode(t, resp, &v)
	if v.Notice == nil || v.Notice.Level != "warning" || len(v.Draft.Education) != 1 {
		t.Fatalf("unexpected outcome %s", resp.Body.String())
	}
}

func TestUnknownCommandIsBadRequest(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)
	resp := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/commands", map[string]any{"type": "explode"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestImproveSummaryRoute(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)
	fillDraft(t, router, id)

	resp := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/improve-summary", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	var res struct {
		Applied bool        `json:"applied"`
		Draft   model.Draft `json:"draft"`
	}
	decode(t, resp, &res)
	if !res.Applied || res.Draft.Summary != "Improved: Engineer" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestImproveWithoutProviderIs503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(testConfig(t, "none"))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	id := newDraft(t, app.Router)
	resp := do(t, app.Router, http.MethodPost, "/api/v1/drafts/"+id+"/improve-responsibilities", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestPreviewNegotiatesHTML(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)
	fillDraft(t, router, id)

	resp := do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/preview", nil)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON preview, got %d %s", resp.Code, resp.Header().Get("Content-Type"))
	}

	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/preview?format=html", nil)
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected HTML preview, got %s", resp.Header().Get("Content-Type"))
	}
	if !strings.Contains(resp.Body.String(), "State University") {
		t.Fatalf("preview missing education entry")
	}
}

func TestExportDocxAndDownload(t *testing.T) {
	router := newRouter(t)
	id := newDraft(t, router)
	fillDraft(t, router, id)

	resp := do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/export?format=docx", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "Platform.docx") {
		t.Fatalf("unexpected disposition %q", resp.Header().Get("Content-Disposition"))
	}
	key := resp.Header().Get("X-Export-Key")
	if key == "" {
		t.Fatalf("expected stored export key")
	}

	dl := do(t, router, http.MethodGet, "/api/v1/exports/"+key, nil)
	if dl.Code != http.StatusOK {
		t.Fatalf("expected status 200 on download, got %d", dl.Code)
	}
	if !bytes.Equal(dl.Body.Bytes(), resp.Body.Bytes()) {
		t.Fatalf("downloaded export differs from rendered export")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/"+key, nil)
	req.Header.Set("X-Guest-Id", "someone-else")
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	if other.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for another owner, got %d", other.Code)
	}

	text := do(t, router, http.MethodGet, "/api/v1/exports/"+key+"?as=text", nil)
	var lines struct {
		Lines []string `json:"lines"`
	}
	decode(t, text, &lines)
	if text.Code != http.StatusOK || !strings.Contains(strings.Join(lines.Lines, "\n"), "Acme") {
		t.Fatalf("unexpected export text %d %v", text.Code, lines.Lines)
	}

	if del := do(t, router, http.MethodDelete, "/api/v1/exports/"+key, nil); del.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 on delete, got %d", del.Code)
	}
	if gone := do(t, router, http.MethodGet, "/api/v1/exports/"+key, nil); gone.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", gone.Code)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/export?format=pdf", nil)
	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected status 501 with pdf disabled, got %d", resp.Code)
	}
	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/export?format=odt", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestLocationRoutes(t *testing.T) {
	router := newRouter(t)
	resp := do(t, router, http.MethodGet, "/api/v1/locations/countries", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"US"`) {
		t.Fatalf("unexpected countries response %d", resp.Code)
	}

	id := newDraft(t, router)
	fillDraft(t, router, id)
	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/locations", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var opts struct {
		States []string `json:"states"`
	}
	decode(t, resp, &opts)
	if len(opts.States) == 0 {
		t.Fatalf("expected states for selected country")
	}

	resp = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/locations?list=education&index=9", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestDraftRoutesRequireIdentity(t *testing.T) {
	router := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func TestListSessionsAndMe(t *testing.T) {
	router := newRouter(t)
	first := newDraft(t, router)
	second := newDraft(t, router)
	do(t, router, http.MethodPost, "/api/v1/drafts/"+second+"/commands", map[string]any{"type": "setField", "field": "title", "value": "Backend"})

	resp := do(t, router, http.MethodGet, "/api/v1/drafts", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var listing struct {
		Sessions []editor.Summary `json:"sessions"`
	}
	decode(t, resp, &listing)
	if len(listing.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %+v", listing.Sessions)
	}
	ids := map[string]string{}
	for _, s := range listing.Sessions {
		ids[s.SessionID] = s.Title
	}
	if _, ok := ids[first]; !ok || ids[second] != "Backend" {
		t.Fatalf("unexpected sessions %+v", listing.Sessions)
	}

	resp = do(t, router, http.MethodGet, "/api/v1/me", nil)
	var me struct {
		UserID       string `json:"userId"`
		Guest        bool   `json:"guest"`
		OpenSessions int    `json:"openSessions"`
	}
	decode(t, resp, &me)
	if me.UserID != "guest:test-guest" || !me.Guest || me.OpenSessions != 2 {
		t.Fatalf("unexpected me %+v", me)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", nil)
	req.Header.Set("X-Guest-Id", "someone-else")
	other := httptest.NewRecorder()
	router.ServeHTTP(other, req)
	decode(t, other, &listing)
	if len(listing.Sessions) != 0 {
		t.Fatalf("sessions leaked across owners: %+v", listing.Sessions)
	}
}

func TestHealthReportsGateway(t *testing.T) {
	router := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body map[string]any
	decode(t, resp, &body)
	if body["ok"] != true || body["gateway"] != "memory" {
		t.Fatalf("unexpected health %v", body)
	}
}
