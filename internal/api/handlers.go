package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/classifier"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/query"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/storage"
)

// Classifier turns complaint text into a classification outcome. It never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) classifier.Outcome
}

// Handler handles HTTP requests for the complaint API
type Handler struct {
	repo       storage.Repository
	classifier Classifier
	logger     infralogger.Logger
	now        func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(repo storage.Repository, cl Classifier, log infralogger.Logger) *Handler {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Handler{
		repo:       repo,
		classifier: cl,
		logger:     log,
		now:        time.Now,
	}
}

// Submit handles POST /submit
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, "Invalid submit request", domain.NewValidationError("complaint", "is required"))
		return
	}
	if strings.TrimSpace(req.Complaint) == "" {
		h.invalid(c, "Invalid submit request", domain.NewValidationError("complaint", "must not be blank"))
		return
	}

	ctx := c.Request.Context()
	outcome := h.classifier.Classify(ctx, req.Complaint)
	complaint := domain.PrepareForWrite(domain.NewComplaint(req.Complaint, outcome.Result()), h.now())

	id, err := h.repo.Add(ctx, complaint)
	if err != nil {
		h.failed(c, "Failed to store complaint", err)
		return
	}

	h.logger.Info("Complaint submitted",
		infralogger.String("doc_id", id),
		infralogger.String("category", complaint.Category),
		infralogger.String("priority", complaint.Priority),
		infralogger.String("path", outcome.Path()),
	)

	c.JSON(http.StatusOK, SubmitResponse{
		ID:              id,
		Category:        complaint.Category,
		Priority:        complaint.Priority,
		Summary:         complaint.Summary,
		SuggestedAction: complaint.SuggestedAction,
		Status:          complaint.Status,
		CreatedAt:       complaint.CreatedAt,
	})
}

// ListComplaints handles GET /complaints
func (h *Handler) ListComplaints(c *gin.Context) {
	params, err := parseListParams(c)
	if err == nil {
		err = params.Validate()
	}
	if err != nil {
		h.invalid(c, "Invalid list request", err)
		return
	}

	items, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		h.failed(c, "Failed to list complaints", err)
		return
	}

	c.JSON(http.StatusOK, query.Run(items, params))
}

func parseListParams(c *gin.Context) (query.Params, error) {
	p := query.NewParams()
	p.Q = c.Query("q")
	p.Status = c.Query("status")
	p.Priority = c.Query("priority")
	if v := c.Query("sort_by"); v != "" {
		p.SortBy = v
	}
	if v := c.Query("sort_dir"); v != "" {
		p.SortDir = v
	}

	var err error
	if p.Page, err = intQuery(c, "page", p.Page); err != nil {
		return p, err
	}
	if p.PageSize, err = intQuery(c, "page_size", p.PageSize); err != nil {
		return p, err
	}
	return p, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

// UpdateStatus handles POST /update_status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, "Invalid status update", domain.NewValidationError("doc_id", "doc_id and status are required"))
		return
	}
	h.update(c, req.ID, domain.FieldStatus, req.Status)
}

// UpdatePriority handles POST /update_priority. Priorities are accepted
// case-insensitively and stored in canonical form.
func (h *Handler) UpdatePriority(c *gin.Context) {
	var req UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, "Invalid priority update", domain.NewValidationError("doc_id", "doc_id and priority are required"))
		return
	}
	priority, ok := domain.CanonicalPriority(req.Priority)
	if !ok {
		h.invalid(c, "Invalid priority update",
			domain.NewValidationError("priority", "must be one of "+strings.Join(domain.Priorities, ", ")))
		return
	}
	h.update(c, req.ID, domain.FieldPriority, priority)
}

// UpdateCategory handles POST /update_category
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, "Invalid category update", domain.NewValidationError("doc_id", "doc_id and category are required"))
		return
	}
	h.update(c, req.ID, domain.FieldCategory, req.Category)
}

func (h *Handler) update(c *gin.Context, id string, field domain.Field, value string) {
	if err := h.repo.UpdateField(c.Request.Context(), id, field, value); err != nil {
		h.failed(c, "Failed to update complaint", err,
			infralogger.String("doc_id", id),
			infralogger.String("field", string(field)),
		)
		return
	}

	h.logger.Info("Complaint updated",
		infralogger.String("doc_id", id),
		infralogger.String("field", string(field)),
		infralogger.String("value", value),
	)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteComplaint handles POST /delete_complaint
func (h *Handler) DeleteComplaint(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.invalid(c, "Invalid delete request", domain.NewValidationError("doc_id", "is required"))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), req.ID); err != nil {
		h.failed(c, "Failed to delete complaint", err, infralogger.String("doc_id", req.ID))
		return
	}

	h.logger.Info("Complaint deleted", infralogger.String("doc_id", req.ID))
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Export handles GET /export. The CSV is rendered fully before any header is
// written so that a store failure still produces a JSON error.
func (h *Handler) Export(c *gin.Context) {
	filters := domain.Filters{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
	}

	var buf bytes.Buffer
	if err := storage.ExportCSV(c.Request.Context(), h.repo, filters, &buf); err != nil {
		h.failed(c, "Failed to export complaints", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", storage.ExportFilename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Stats handles GET /stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.repo.Aggregate(c.Request.Context())
	if err != nil {
		h.failed(c, "Failed to aggregate complaints", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) invalid(c *gin.Context, msg string, err error) {
	h.logger.Warn(msg, infralogger.Error(err), infralogger.String("path", c.FullPath()))
	respondError(c, err)
}

func (h *Handler) failed(c *gin.Context, msg string, err error, fields ...infralogger.Field) {
	fields = append(fields, infralogger.Error(err))
	if status, _ := statusFor(err); status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Warn(msg, fields...)
	}
	respondError(c, err)
}
