package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/services"
)

// WebSocketHandler attaches the authenticated user to the hub for live
// parcel updates.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		if err := hub.HandleConnection(c.Writer, c.Request, userID); err != nil {
			c.JSON(400, gin.H{"error": "Failed to upgrade connection"})
		}
	}
}
