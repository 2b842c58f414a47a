package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/nurpe/mms-documents/internal/form"
	"github.com/nurpe/mms-documents/internal/format"
	"github.com/nurpe/mms-documents/internal/http/middleware"
	"github.com/nurpe/mms-documents/internal/model"
	"github.com/nurpe/mms-documents/internal/numbering"
	"github.com/nurpe/mms-documents/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	documents *service.DocumentService
	log       zerolog.Logger
}

func NewHandler(documents *service.DocumentService, log zerolog.Logger) *Handler {
	return &Handler{documents: documents, log: log}
}

func (h *Handler) Register(router *gin.Engine, middlewares ...gin.HandlerFunc) {
	router.GET("/health", h.health)

	api := router.Group("/")
	api.Use(middlewares...)
	api.POST("/documents/:kind/preview", h.preview)
	api.POST("/documents/:kind", h.submit)
	api.GET("/documents/:kind", h.list)
	api.GET("/documents/:kind/export", h.export)
	api.GET("/documents/:kind/:number", h.get)
	api.GET("/documents/:kind/:number/pdf", h.pdf)
	api.POST("/documents/:kind/:number/approve", h.approve)
	api.GET("/purchase-orders/:number/receivable", h.receivable)
	api.GET("/budget", h.budget)
	api.GET("/approval-route", h.approvalRoute)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type documentResponse struct {
	model.Document
	StatusCategory format.Category `json:"status_category"`
	GrandTotal     string          `json:"grand_total_formatted"`
}

func toResponse(doc model.Document) documentResponse {
	return documentResponse{
		Document:       doc,
		StatusCategory: format.StatusCategory(string(doc.Status)),
		GrandTotal:     format.Money(doc.Totals.GrandTotal, doc.Header.Currency),
	}
}

func (h *Handler) preview(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var payload service.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preview, err := h.documents.Preview(c.Request.Context(), kind, payload)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *Handler) submit(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var payload service.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft, err := queryBool(c, "draft")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid draft"})
		return
	}
	confirm, err := queryBool(c, "confirm")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirm"})
		return
	}

	doc, err := h.documents.Submit(c.Request.Context(), kind, payload, form.SubmitOptions{
		Draft:           draft,
		ConfirmWarnings: confirm,
		Actor:           middleware.PrincipalFrom(c).Actor(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(*doc))
}

func (h *Handler) list(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	docs, err := h.documents.List(c.Request.Context(), kind, service.Filter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *Handler) get(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), kind, c.Param("number"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*doc))
}

func (h *Handler) approve(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	doc, err := h.documents.Approve(c.Request.Context(), kind, c.Param("number"), middleware.PrincipalFrom(c).Actor())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(*doc))
}

func (h *Handler) pdf(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	result, err := h.documents.RenderPDF(c.Request.Context(), kind, c.Param("number"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) export(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	result, err := h.documents.ExportExcel(c.Request.Context(), kind, service.Filter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) receivable(c *gin.Context) {
	lines, err := h.documents.Receivable(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lines})
}

func (h *Handler) budget(c *gin.Context) {
	budget, err := h.documents.Budget(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":     budget.Limit,
		"used":      budget.Used,
		"remaining": budget.Remaining(),
	})
}

func (h *Handler) approvalRoute(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("amount"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	amount, err := cast.ToFloat64E(raw)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "route": h.documents.ApprovalRoute(amount)})
}

func (h *Handler) kind(c *gin.Context) (model.DocumentKind, bool) {
	kind, ok := model.KindFromSlug(strings.ToLower(c.Param("kind")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown document kind"})
		return "", false
	}
	return kind, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var outcome *form.ValidationOutcome
	switch {
	case errors.As(err, &outcome):
		c.JSON(http.StatusUnprocessableEntity, outcome)
	case errors.Is(err, numbering.ErrDuplicateNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, form.ErrLineIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	return cast.ToBoolE(raw)
}
