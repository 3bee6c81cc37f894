package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	loandomain "github.com/lendcore/backend/internal/domain/loan"
)

type LoanService interface {
	Get(ctx context.Context, loanID string) (*loandomain.Entity, *loandomain.ScheduleSummary, error)
	Schedule(ctx context.Context, loanID string) ([]loandomain.ScheduleEntry, error)
}

type LoanHandler struct {
	loans LoanService
}

func NewLoanHandler(loans LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

func (h *LoanHandler) Get(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	ln, summary, err := h.loans.Get(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                ln.ID,
		"application_id":    ln.ApplicationID,
		"customer_id":       ln.CustomerID,
		"product_id":        ln.ProductID,
		"principal_minor":   ln.PrincipalMinor,
		"interest_rate_bps": ln.InterestRateBPS,
		"term_months":       ln.TermMonths,
		"start_date":        ln.StartDate.Format("2006-01-02"),
		"end_date":          ln.EndDate.Format("2006-01-02"),
		"status":            ln.Status,
		"approved_by":       ln.ApprovedBy,
		"approved_at":       ln.ApprovedAt.UTC().Format(time.RFC3339),
		"installments": gin.H{
			"total": summary.TotalEntries,
			"paid":  summary.PaidEntries,
		},
	})
}

func (h *LoanHandler) GetSchedule(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	entries, err := h.loans.Schedule(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":                      e.ID,
			"installment_number":      e.InstallmentNumber,
			"due_date":                e.DueDate.Format("2006-01-02"),
			"principal_minor":         e.PrincipalMinor,
			"interest_minor":          e.InterestMinor,
			"total_minor":             e.TotalMinor,
			"remaining_balance_minor": e.RemainingMinor,
			"status":                  e.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
