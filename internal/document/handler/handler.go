package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/document/service"
	"github.com/docvault/docvault/pkg/logger"
)

// Handler exposes the document service as a REST API under /api/documents.
type Handler struct {
	svc service.Service
}

func New(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the document routes on r. Reads of a single document and
// the listing are public; everything else goes through authn when one is
// supplied. A nil authn leaves the whole API open (dev mode).
func (h *Handler) Register(r *gin.Engine, authn gin.HandlerFunc) {
	docs := r.Group("/api/documents")
	docs.GET("", h.list)
	docs.GET("/:id", h.get)

	protected := docs.Group("")
	if authn != nil {
		protected.Use(authn)
	}
	protected.POST("", h.create)
	protected.PATCH("/:id", h.update)
	protected.DELETE("/:id", h.delete)
	protected.POST("/:id/restore", h.restore)
	protected.GET("/:id/versions", h.versions)
	protected.GET("/:id/versions/:versionId", h.version)
}

func (h *Handler) create(c *gin.Context) {
	var in document.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) update(c *gin.Context) {
	var in document.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restore(c *gin.Context) {
	doc, err := h.svc.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) list(c *gin.Context) {
	params, err := listParams(c)
	if err != nil {
		respondError(c, err)
		return
	}
	docs, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) versions(c *gin.Context) {
	versions, err := h.svc.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if versions == nil {
		versions = []document.Version{}
	}
	c.JSON(http.StatusOK, versions)
}

func (h *Handler) version(c *gin.Context) {
	v, err := h.svc.Version(c.Request.Context(), c.Param("id"), c.Param("versionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// listParams reads ?skip= and ?limit=, falling back to the first page of
// ten. Range checks live in the service; only syntax is rejected here.
func listParams(c *gin.Context) (document.ListParams, error) {
	p := document.DefaultListParams()
	if s := c.Query("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%w: skip must be an integer", document.ErrInvalid)
		}
		p.Skip = n
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("%w: limit must be an integer", document.ErrInvalid)
		}
		p.Limit = n
	}
	return p, nil
}

// respondError maps domain errors to status codes. Storage trouble and
// anything unexpected are logged in full and answered with an opaque body.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrUnavailable):
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": document.ErrUnavailable.Error()})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
