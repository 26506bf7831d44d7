package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
)

func notificationResponse(notification *models.Notification) gin.H {
	return gin.H{
		"id":        notification.ID,
		"userId":    notification.UserID,
		"parcelId":  notification.ParcelID,
		"message":   notification.Message,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	}
}

// GetNotifications lists the authenticated user's notifications, newest
// first.
func GetNotifications(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		list, err := notifications.ListForUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		responses := make([]gin.H, 0, len(list))
		for i := range list {
			responses = append(responses, notificationResponse(&list[i]))
		}
		c.JSON(200, responses)
	}
}

// GetUnreadCount returns the number of unread notifications for the
// authenticated user.
func GetUnreadCount(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		count, err := notifications.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"count": count})
	}
}

// MarkNotificationRead flips the read flag on a notification.
func MarkNotificationRead(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := notifications.MarkRead(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(204)
	}
}

// DeleteNotification removes a notification. Admin only.
func DeleteNotification(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := notifications.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(204)
	}
}
