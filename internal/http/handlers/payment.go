package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/lendcore/backend/internal/domain/payment"
	"github.com/lendcore/backend/internal/http/middleware"
)

type PaymentService interface {
	Record(ctx context.Context, in paymentdomain.RecordInput) (*paymentdomain.Transaction, error)
	ListByLoan(ctx context.Context, loanID string) ([]paymentdomain.Transaction, error)
}

type PaymentHandler struct {
	payments PaymentService
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type recordPaymentRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	AmountMinor int64  `json:"amount_minor" binding:"required"`
	Method      string `json:"method"`
	PaymentDate string `json:"payment_date"`
}

func (h *PaymentHandler) Record(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_loan_id"})
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var paymentDate time.Time
	if strings.TrimSpace(req.PaymentDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.PaymentDate))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payment_date"})
			return
		}
		paymentDate = parsed
	}

	txn, err := h.payments.Record(c.Request.Context(), paymentdomain.RecordInput{
		LoanID:      loanID,
		CustomerID:  req.CustomerID,
		AmountMinor: req.AmountMinor,
		PaymentDate: paymentDate,
		Method:      req.Method,
		ProcessedBy: c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction_id":  txn.ID,
		"reference":       txn.Reference,
		"amount_minor":    txn.AmountMinor,
		"principal_minor": txn.PrincipalMinor,
		"interest_minor":  txn.InterestMinor,
	})
}

func (h *PaymentHandler) ListByLoan(c *gin.Context) {
	loanID := strings.TrimSpace(c.Param("loanId"))
	items, err := h.payments.ListByLoan(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, txn := range items {
		out = append(out, gin.H{
			"id":              txn.ID,
			"reference":       txn.Reference,
			"amount_minor":    txn.AmountMinor,
			"principal_minor": txn.PrincipalMinor,
			"interest_minor":  txn.InterestMinor,
			"payment_date":    txn.PaymentDate.Format("2006-01-02"),
			"method":          txn.Method,
			"status":          txn.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
