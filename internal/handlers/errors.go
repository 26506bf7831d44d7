package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/apperr"
)

// respondError translates service-layer error kinds into HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(404, gin.H{"error": err.Error()})
	case apperr.IsBadRequest(err):
		c.JSON(400, gin.H{"error": err.Error()})
	case apperr.IsForbidden(err):
		c.JSON(403, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
