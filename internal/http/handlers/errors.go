package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendcore/backend/internal/domain/application"
	"github.com/lendcore/backend/internal/domain/loan"
	"github.com/lendcore/backend/internal/domain/payment"
	"github.com/lendcore/backend/internal/domain/schedule"
)

// writeError maps domain error kinds onto HTTP statuses. Anything
// unrecognized is a storage-level failure and stays opaque to the caller.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrValidation),
		errors.Is(err, payment.ErrValidation),
		errors.Is(err, schedule.ErrInvalidTerm),
		errors.Is(err, schedule.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
	case errors.Is(err, application.ErrNotFound),
		errors.Is(err, loan.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "detail": err.Error()})
	case errors.Is(err, application.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "detail": err.Error()})
	case errors.Is(err, loan.ErrDependencyMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "dependency_missing", "detail": err.Error()})
	case errors.Is(err, payment.ErrNoPendingInstallment):
		c.JSON(http.StatusConflict, gin.H{"error": "no_pending_installment", "detail": err.Error()})
	case errors.Is(err, payment.ErrInsufficientPayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient_payment", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
