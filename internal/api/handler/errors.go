package handler

import (
	"errors"
	"net/http"

	"reviewhub/internal/api/service"
	"reviewhub/internal/api/validation"

	"github.com/gin-gonic/gin"
)

// respondError maps service-layer errors onto HTTP responses. Field
// validation failures come back keyed by field name so clients can show
// them inline; everything unexpected is a plain 500.
func respondError(c *gin.Context, err error) {
	var ferr *validation.FieldError
	if errors.As(err, &ferr) {
		c.JSON(http.StatusBadRequest, gin.H{ferr.Field: ferr.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, service.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"confirmation_code": "invalid confirmation code"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
