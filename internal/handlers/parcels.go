package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/routegenius/logistics-backend/internal/middleware"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/internal/services"
)

type ParcelInput struct {
	SenderName       string `json:"senderName" binding:"required"`
	SenderAddress    string `json:"senderAddress" binding:"required"`
	RecipientName    string `json:"recipientName" binding:"required"`
	RecipientAddress string `json:"recipientAddress" binding:"required"`
	RecipientEmail   string `json:"recipientEmail" binding:"omitempty,email"`
	Description      string `json:"description"`
	CurrentLocation  string `json:"currentLocation"`
	Status           string `json:"status" binding:"omitempty,oneof=PENDING DISPATCHED IN_TRANSIT DELIVERED CANCELLED RETURNED"`
	UserID           uint   `json:"userId"`
}

func parcelResponse(parcel *models.Parcel) gin.H {
	return gin.H{
		"id":               parcel.ID,
		"trackingCode":     parcel.TrackingCode,
		"senderName":       parcel.SenderName,
		"senderAddress":    parcel.SenderAddress,
		"recipientName":    parcel.RecipientName,
		"recipientAddress": parcel.RecipientAddress,
		"recipientEmail":   parcel.RecipientEmail,
		"description":      parcel.Description,
		"status":           parcel.Status,
		"currentLocation":  parcel.CurrentLocation,
		"userId":           parcel.UserID,
		"createdAt":        parcel.CreatedAt,
		"updatedAt":        parcel.UpdatedAt,
	}
}

// CreateParcel registers a parcel for a user. Admin only. Any status in the
// request is ignored; new parcels always start as PENDING.
func CreateParcel(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ParcelInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.UserID == 0 {
			c.JSON(400, gin.H{"error": "userId is required"})
			return
		}

		parcel := models.Parcel{
			SenderName:       input.SenderName,
			SenderAddress:    input.SenderAddress,
			RecipientName:    input.RecipientName,
			RecipientAddress: input.RecipientAddress,
			RecipientEmail:   input.RecipientEmail,
			Description:      input.Description,
			CurrentLocation:  input.CurrentLocation,
		}

		created, err := parcels.Create(c.Request.Context(), &parcel, input.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, parcelResponse(created))
	}
}

// UpdateParcel overwrites a parcel's mutable fields. Admin only.
func UpdateParcel(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var input ParcelInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		patch := services.ParcelUpdate{
			SenderName:       input.SenderName,
			SenderAddress:    input.SenderAddress,
			RecipientName:    input.RecipientName,
			RecipientAddress: input.RecipientAddress,
			RecipientEmail:   input.RecipientEmail,
			Description:      input.Description,
			CurrentLocation:  input.CurrentLocation,
		}
		if input.Status != "" {
			status := models.ParcelStatus(input.Status)
			patch.Status = &status
		}

		updated, err := parcels.Update(c.Request.Context(), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, parcelResponse(updated))
	}
}

// GetAllParcels returns a paginated, searchable parcel listing. Admin only.
func GetAllParcels(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
		size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
		sortBy := c.DefaultQuery("sortBy", "id")
		sortDir := c.DefaultQuery("sortDir", "asc")
		searchTerm := c.Query("searchTerm")

		result, err := parcels.ListPaginated(c.Request.Context(), page, size, sortBy, sortDir, searchTerm)
		if err != nil {
			respondError(c, err)
			return
		}

		items := make([]gin.H, 0, len(result.Items))
		for i := range result.Items {
			items = append(items, parcelResponse(&result.Items[i]))
		}

		c.JSON(200, gin.H{
			"items":         items,
			"page":          result.Page,
			"size":          result.Size,
			"totalElements": result.TotalElements,
			"totalPages":    result.TotalPages,
		})
	}
}

// GetMyParcels lists the parcels owned by the authenticated user.
func GetMyParcels(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		owned, err := parcels.ListByOwner(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}

		responses := make([]gin.H, 0, len(owned))
		for i := range owned {
			responses = append(responses, parcelResponse(&owned[i]))
		}
		c.JSON(200, responses)
	}
}

// TrackParcel looks a parcel up by tracking code. Owners see their own
// parcels; admins see everything.
func TrackParcel(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("trackingCode")

		parcel, err := parcels.FindByTrackingCode(c.Request.Context(), code)
		if err != nil {
			respondError(c, err)
			return
		}

		if parcel.UserID != c.GetUint("userId") && !middleware.IsAdmin(c) {
			c.JSON(403, gin.H{"error": "You do not have permission to track this parcel."})
			return
		}
		c.JSON(200, parcelResponse(parcel))
	}
}

// DeleteParcel removes a parcel. Admin only.
func DeleteParcel(parcels *services.ParcelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		if err := parcels.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(204)
	}
}
