package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/application/service"
	"github.com/akhil1198/ER/internal/domain/entity"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
	"github.com/akhil1198/ER/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	chat          service.ChatService
	catalog       service.CatalogService
	reports       service.ReportService
	export        service.ExportService
	health        HealthChecker
	maxUploadSize int64
	logger        Logger
}

// NewHandlers creates a new Handlers instance. health may be nil.
func NewHandlers(services Services, health HealthChecker, maxUploadSize int64, logger Logger) *Handlers {
	return &Handlers{
		chat:          services.Chat,
		catalog:       services.Catalog,
		reports:       services.Reports,
		export:        services.Export,
		health:        health,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// ChatRequest is one user message
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// ConfirmRequest carries a user-corrected expense
type ConfirmRequest struct {
	SessionID   string          `json:"sessionId" binding:"required"`
	ExpenseData *expense.Record `json:"expenseData" binding:"required"`
}

// ClassifyRequest asks for the expense type matching a free-form name
type ClassifyRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

// ReportCreatedResponse is returned after a report is opened
type ReportCreatedResponse struct {
	ReportID string `json:"reportId"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if h.health != nil {
		ok, details := h.health(c.Request.Context())
		resp.Components = details
		if !ok {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{Success: status == http.StatusOK, Data: resp})
}

// Chat handles POST /api/chat
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "message is required", err)
		return
	}
	if !h.validSessionID(c, req.SessionID, true) {
		return
	}

	c.JSON(http.StatusOK, h.chat.HandleMessage(c.Request.Context(), req.SessionID, utils.SanitizeString(req.Message)))
}

// UploadReceipt handles POST /api/receipts (multipart "file", optional "sessionId")
func (h *Handlers) UploadReceipt(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	if !h.validSessionID(c, sessionID, true) {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "receipt file is required", err)
		return
	}

	mimeType, err := utils.ValidateReceiptUpload(fh.Filename, fh.Size, h.maxUploadSize)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, utils.ErrUploadTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.logger.Error("Rejected receipt upload", "filename", fh.Filename, "size", fh.Size, "error", err)
		c.JSON(status, Response{Success: false, Error: err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.serverError(c, "failed to read upload", err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.serverError(c, "failed to read upload", err)
		return
	}

	upload := service.ReceiptUpload{Filename: fh.Filename, MimeType: mimeType, Data: data}
	c.JSON(http.StatusOK, h.chat.ProcessReceipt(c.Request.Context(), sessionID, upload))
}

// ConfirmExpense handles POST /api/expenses/confirm
func (h *Handlers) ConfirmExpense(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "sessionId and expenseData are required", err)
		return
	}
	if !h.validSessionID(c, req.SessionID, false) {
		return
	}

	c.JSON(http.StatusOK, h.chat.ConfirmExpense(c.Request.Context(), req.SessionID, req.ExpenseData))
}

// GetSession handles GET /api/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	id := c.Param("id")
	if !h.validSessionID(c, id, false) {
		return
	}

	sess, err := h.chat.GetSession(c.Request.Context(), id)
	if errors.Is(err, port.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "session not found"})
		return
	}
	if err != nil {
		h.serverError(c, "failed to load session", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: sess})
}

// ResetSession handles DELETE /api/sessions/:id
func (h *Handlers) ResetSession(c *gin.Context) {
	id := c.Param("id")
	if !h.validSessionID(c, id, false) {
		return
	}

	if err := h.chat.ResetSession(c.Request.Context(), id); err != nil {
		h.serverError(c, "failed to reset session", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListCategories handles GET /api/expense-categories
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: h.catalog.Categories()})
}

// ListExpenseTypes handles GET /api/expense-types?category=
func (h *Handlers) ListExpenseTypes(c *gin.Context) {
	types, err := h.catalog.ListTypes(c.Query("category"))
	if err != nil {
		h.writeServiceError(c, "failed to list expense types", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: types})
}

// GetExpenseForm handles GET /api/expense-types/:id/form
func (h *Handlers) GetExpenseForm(c *gin.Context) {
	form, err := h.catalog.Form(c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "failed to build expense form", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: form})
}

// ClassifyExpense handles POST /api/expense-types/classify
func (h *Handlers) ClassifyExpense(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "name is required", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: h.catalog.Classify(req.Name, req.Category)})
}

// ListReports handles GET /api/reports
func (h *Handlers) ListReports(c *gin.Context) {
	reports, err := h.reports.ListReports(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "failed to retrieve reports", err)
		return
	}
	if reports == nil {
		reports = []report.Summary{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: reports})
}

// CreateReport handles POST /api/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	var req report.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid report request", err)
		return
	}

	id, err := h.reports.CreateReport(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, "failed to create report", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: ReportCreatedResponse{ReportID: id}})
}

// AddEntry handles POST /api/reports/:id/entries
func (h *Handlers) AddEntry(c *gin.Context) {
	var rec expense.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		h.badRequest(c, "invalid expense", err)
		return
	}

	result, err := h.reports.AddEntry(c.Request.Context(), c.Param("id"), &rec)
	if err != nil {
		h.writeServiceError(c, "failed to add entry", err)
		return
	}
	if !result.Created {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    result,
			Error:   result.Mapping.Errors.String(),
		})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// ExportSubmissions handles GET /api/submissions/export
func (h *Handlers) ExportSubmissions(c *gin.Context) {
	filter, err := submissionFilter(c)
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	data, err := h.export.ExportSubmissionsXLSX(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, "failed to export submissions", err)
		return
	}

	name := fmt.Sprintf("submissions-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// SubmissionStats handles GET /api/submissions/stats
func (h *Handlers) SubmissionStats(c *gin.Context) {
	counts, err := h.export.SubmissionStats(c.Request.Context())
	if err != nil {
		h.serverError(c, "failed to count submissions", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: counts})
}

func submissionFilter(c *gin.Context) (entity.SubmissionFilter, error) {
	filter := entity.SubmissionFilter{
		SessionID: c.Query("session"),
		Kind:      strings.ToUpper(c.Query("kind")),
	}

	if filter.Kind != "" && filter.Kind != entity.SubmissionKindReport && filter.Kind != entity.SubmissionKindEntry {
		return filter, fmt.Errorf("invalid kind %q", c.Query("kind"))
	}
	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("since must be RFC3339: %q", v)
		}
		filter.Since = &since
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (h *Handlers) validSessionID(c *gin.Context, id string, allowEmpty bool) bool {
	if id == "" && allowEmpty {
		return true
	}
	if err := utils.ValidateSessionID(id); err != nil {
		h.badRequest(c, "invalid session id", err)
		return false
	}
	return true
}

// writeServiceError maps service sentinel errors onto status codes; anything
// else is a failed backend call.
func (h *Handlers) writeServiceError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		h.badRequest(c, err.Error(), err)
	case errors.Is(err, service.ErrUnknownCategory), errors.Is(err, service.ErrUnknownExpenseType):
		h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: msg})
	}
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error("Invalid request", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (h *Handlers) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}
