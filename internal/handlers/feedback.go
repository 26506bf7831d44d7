package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
)

type FeedbackInput struct {
	ParcelID     uint   `json:"parcelId" binding:"required"`
	FeedbackText string `json:"feedbackText" binding:"required,max=500"`
	Rating       int    `json:"rating" binding:"required"`
}

func feedbackResponse(feedback *models.Feedback) gin.H {
	return gin.H{
		"id":           feedback.ID,
		"feedbackText": feedback.FeedbackText,
		"rating":       feedback.Rating,
		"userId":       feedback.UserID,
		"parcelId":     feedback.ParcelID,
		"submittedAt":  feedback.SubmittedAt,
	}
}

// SubmitFeedback records feedback from the authenticated user on one of
// their delivered parcels.
func SubmitFeedback(feedback *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input FeedbackInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		userID := c.GetUint("userId")
		submitted, err := feedback.Submit(c.Request.Context(), userID, input.ParcelID, input.FeedbackText, input.Rating)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, feedbackResponse(submitted))
	}
}

// GetAllFeedback lists every feedback record. Admin only.
func GetAllFeedback(feedback *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := feedback.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		responses := make([]gin.H, 0, len(all))
		for i := range all {
			responses = append(responses, feedbackResponse(&all[i]))
		}
		c.JSON(200, responses)
	}
}

// DeleteFeedback removes a feedback record. Admin only.
func DeleteFeedback(feedback *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := feedback.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(204)
	}
}

// FeedbackExists reports whether feedback was already left for a parcel.
// The client uses this to decide whether to show the submission form.
func FeedbackExists(feedback *services.FeedbackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, ok := parseID(c, "parcelId")
		if !ok {
			return
		}

		exists, err := feedback.ExistsForParcel(c.Request.Context(), parcelID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"exists": exists})
	}
}
