package dashboard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the document list routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.DELETE("/documents/:id", h.delete)
}

func filterFromQuery(c *gin.Context) Filter {
	t := strings.TrimSpace(c.Query("type"))
	if strings.EqualFold(t, "all") {
		t = ""
	}
	return Filter{Type: model.DocumentType(t), Query: c.Query("q")}
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docs, err := h.Svc.Load(c.Request.Context(), userID, filterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, Page{Documents: docs})
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.DocumentIDKey, id)
	page, err := h.Svc.Delete(c.Request.Context(), userID, id, filterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, page)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, gateway.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "document not found", nil)
	default:
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "failed to load documents", err.Error())
	}
}
