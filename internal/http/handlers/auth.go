package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendcore/backend/internal/auth"
	"github.com/lendcore/backend/internal/http/middleware"
)

type AuthHandler struct {
	authService *auth.Service
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"employee": gin.H{
			"id":        result.Employee.ID,
			"full_name": result.Employee.FullName,
			"email":     result.Employee.Email,
			"role":      result.Employee.Role,
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	employee, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee_not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        employee.ID,
		"full_name": employee.FullName,
		"email":     employee.Email,
		"role":      employee.Role,
	})
}
