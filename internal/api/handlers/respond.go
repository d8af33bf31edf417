package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/api/middleware"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/utils"
)

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Unrecognized errors become opaque 500s so internals do not leak.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// staffIDFromContext returns the authenticated staff member's ID. The second
// return is false when AuthMiddleware did not run or the ID is malformed.
func staffIDFromContext(c *gin.Context) (utils.SixID, bool) {
	val, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		return utils.SixID{}, false
	}
	idStr, ok := val.(string)
	if !ok {
		return utils.SixID{}, false
	}
	id, err := utils.ParseSixID(idStr)
	if err != nil {
		return utils.SixID{}, false
	}
	return id, true
}
