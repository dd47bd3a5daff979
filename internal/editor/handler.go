package editor

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/resume/augment"
	"resume-builder/resume/form"
	"resume-builder/resume/model"
	"resume-builder/resume/preview"
)

const maxCommandSize = 1 << 20 // 1MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches draft, export and location routes to the router
// group. The improve routes are registered separately so callers can put a
// rate limiter in front of them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drafts", h.list)
	rg.POST("/drafts", h.create)
	rg.POST("/drafts/open/:documentId", h.open)
	rg.GET("/drafts/:id", h.get)
	rg.DELETE("/drafts/:id", h.discard)
	rg.POST("/drafts/:id/commands", h.dispatch)
	rg.GET("/drafts/:id/preview", h.preview)
	rg.GET("/drafts/:id/locations", h.locations)
	rg.POST("/drafts/:id/save", h.save)
	rg.GET("/drafts/:id/export", h.export)
	rg.GET("/documents/:id/export", h.exportDocument)
	rg.GET("/exports/*key", h.download)
	rg.DELETE("/exports/*key", h.removeExport)
	rg.GET("/locations/countries", h.countries)
}

// RegisterImproveRoutes attaches the augmentation routes.
func (h *Handler) RegisterImproveRoutes(rg *gin.RouterGroup) {
	rg.POST("/drafts/:id/improve-summary", h.improveSummary)
	rg.POST("/drafts/:id/improve-responsibilities", h.improveResponsibilities)
}

func sessionID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.SessionIDKey, id)
	return id
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	v := h.Svc.New(userID)
	c.Set(middleware.SessionIDKey, v.SessionID)
	respond.Created(c, v)
}

func (h *Handler) open(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID := strings.TrimSpace(c.Param("documentId"))
	c.Set(middleware.DocumentIDKey, docID)
	v, err := h.Svc.Open(c.Request.Context(), userID, docID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.SessionIDKey, v.SessionID)
	respond.Created(c, v)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, gin.H{"sessions": h.Svc.Sessions(middleware.UserIDFromContext(c))})
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(middleware.UserIDFromContext(c), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) discard(c *gin.Context) {
	if err := h.Svc.Discard(middleware.UserIDFromContext(c), sessionID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) dispatch(c *gin.Context) {
	id := sessionID(c)
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCommandSize))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read request body", nil)
		return
	}
	cmd, err := form.DecodeCommand(body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return
	}
	out, err := h.Svc.Dispatch(middleware.UserIDFromContext(c), id, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) preview(c *gin.Context) {
	p, err := h.Svc.Preview(middleware.UserIDFromContext(c), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if wantsHTML(c) {
		html, err := preview.HTML(p)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to render preview", err.Error())
			return
		}
		c.Data(http.StatusOK, FormatHTML.ContentType(), html)
		return
	}
	respond.OK(c, p)
}

func wantsHTML(c *gin.Context) bool {
	if f := c.Query("format"); f != "" {
		return strings.EqualFold(f, string(FormatHTML))
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func (h *Handler) locations(c *gin.Context) {
	id := sessionID(c)
	index := 0
	if raw := c.Query("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "index must be an integer", nil)
			return
		}
		index = n
	}
	opts, err := h.Svc.Options(middleware.UserIDFromContext(c), id, form.ListKind(c.Query("list")), index)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, opts)
}

func (h *Handler) countries(c *gin.Context) {
	respond.OK(c, gin.H{"countries": h.Svc.Countries()})
}

func (h *Handler) improveSummary(c *gin.Context) {
	res, err := h.Svc.ImproveSummary(c.Request.Context(), middleware.UserIDFromContext(c), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) improveResponsibilities(c *gin.Context) {
	res, err := h.Svc.ImproveResponsibilities(c.Request.Context(), middleware.UserIDFromContext(c), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) save(c *gin.Context) {
	res, err := h.Svc.Save(c.Request.Context(), middleware.UserIDFromContext(c), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if res.DocumentID != "" {
		c.Set(middleware.DocumentIDKey, res.DocumentID)
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, res)
}

func (h *Handler) export(c *gin.Context) {
	id := sessionID(c)
	f, err := ParseFormat(c.DefaultQuery("format", string(FormatDOCX)))
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), id, f)
	if err != nil {
		writeError(c, err)
		return
	}
	writeFile(c, file)
}

func (h *Handler) exportDocument(c *gin.Context) {
	docID := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.DocumentIDKey, docID)
	f, err := ParseFormat(c.DefaultQuery("format", string(FormatDOCX)))
	if err != nil {
		writeError(c, err)
		return
	}
	file, err := h.Svc.ExportDocument(c.Request.Context(), middleware.UserIDFromContext(c), docID, f)
	if err != nil {
		writeError(c, err)
		return
	}
	writeFile(c, file)
}

func writeFile(c *gin.Context, file File) {
	if file.Stored != nil {
		c.Header("X-Export-Key", file.Stored.Key)
	}
	disposition := "attachment"
	if strings.HasPrefix(file.ContentType, "text/html") {
		disposition = "inline"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func exportKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

// download streams a previously stored export. With ?as=text the export is
// read back and its text lines returned instead.
func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if c.Query("as") == "text" {
		lines, err := h.Svc.ExportText(c.Request.Context(), userID, exportKey(c))
		if err != nil {
			writeError(c, err)
			return
		}
		respond.OK(c, gin.H{"lines": lines})
		return
	}
	rc, meta, err := h.Svc.OpenExport(c.Request.Context(), userID, exportKey(c))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, meta.Size, meta.ContentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": meta.FileName}),
	})
}

func (h *Handler) removeExport(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.DeleteExport(c.Request.Context(), userID, exportKey(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	if ve, ok := model.AsValidationError(err); ok {
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeValidation, "draft is invalid", ve.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "session not found", nil)
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, object.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, gateway.ErrInvalidInput),
		errors.Is(err, form.ErrIndexOutOfRange),
		errors.Is(err, form.ErrUnknownList),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, form.ErrInvalidCommand),
		errors.Is(err, object.ErrInvalidKey):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, augment.ErrInFlight):
		respond.Error(c, http.StatusConflict, respond.CodeInFlight, "an improvement is already in progress", nil)
	case errors.Is(err, augment.ErrNoImprover):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeAugmentUnavailable, "text improvement is not configured", nil)
	case errors.Is(err, ErrPDFDisabled), errors.Is(err, ErrStoreDisabled):
		respond.Error(c, http.StatusNotImplemented, respond.CodeNotImplemented, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "request failed", err.Error())
	}
}
