package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appdomain "github.com/lendcore/backend/internal/domain/application"
	"github.com/lendcore/backend/internal/http/middleware"
)

type ApplicationService interface {
	Submit(ctx context.Context, in appdomain.SubmitInput) (*appdomain.Entity, error)
	Transition(ctx context.Context, applicationID string, newStatus appdomain.Status, reviewerID string) (string, error)
	Get(ctx context.Context, applicationID string) (*appdomain.Entity, error)
	List(ctx context.Context, f appdomain.ListFilter) ([]appdomain.Entity, error)
	StatusSteps(ctx context.Context, applicationID string) ([]appdomain.Step, error)
}

type ApplicationHandler struct {
	applications ApplicationService
}

func NewApplicationHandler(applications ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req appdomain.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	created, err := h.applications.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"application_id": created.ID,
		"reference":      created.Reference,
		"status":         created.Status,
	})
}

type reviewRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (h *ApplicationHandler) Review(c *gin.Context) {
	applicationID := strings.TrimSpace(c.Param("applicationId"))
	if applicationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_application_id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	decision, err := appdomain.ParseStatus(strings.ToLower(strings.TrimSpace(req.Decision)))
	if err != nil {
		writeError(c, err)
		return
	}

	reviewerID := c.GetString(middleware.ContextUserID)
	loanID, err := h.applications.Transition(c.Request.Context(), applicationID, decision, reviewerID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"application_id": applicationID, "status": decision}
	if loanID != "" {
		resp["loan_id"] = loanID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	applicationID := strings.TrimSpace(c.Param("applicationId"))
	app, err := h.applications.Get(c.Request.Context(), applicationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationResponse(app))
}

func (h *ApplicationHandler) List(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)
	items, err := h.applications.List(c.Request.Context(), appdomain.ListFilter{
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, applicationResponse(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *ApplicationHandler) StatusSteps(c *gin.Context) {
	applicationID := strings.TrimSpace(c.Param("applicationId"))
	steps, err := h.applications.StatusSteps(c.Request.Context(), applicationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

func applicationResponse(app *appdomain.Entity) gin.H {
	resp := gin.H{
		"id":           app.ID,
		"reference":    app.Reference,
		"customer_id":  app.CustomerID,
		"product_id":   app.ProductID,
		"amount_minor": app.AmountMinor,
		"term_months":  app.TermMonths,
		"purpose":      app.Purpose,
		"status":       app.Status,
		"created_at":   app.CreatedAt.UTC().Format(time.RFC3339),
	}
	if app.ReviewedBy != nil {
		resp["reviewed_by"] = *app.ReviewedBy
	}
	if app.ReviewedAt != nil {
		resp["reviewed_at"] = app.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
