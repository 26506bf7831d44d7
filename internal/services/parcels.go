package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/routegenius/logistics-backend/internal/apperr"
	"github.com/routegenius/logistics-backend/internal/models"
	"github.com/routegenius/logistics-backend/pkg/utils"
	"gorm.io/gorm"
)

// trackingCodeAttempts bounds the regenerate-on-collision loop. The code
// space is 36^16, so a second attempt is already exceptional.
const trackingCodeAttempts = 5

// ParcelService is the parcel registry: it assigns tracking codes, guards
// the status lifecycle and fans out email, in-app and websocket
// notifications on create/update.
type ParcelService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewParcelService(db *gorm.DB, notifications *NotificationService) *ParcelService {
	return &ParcelService{db: db, notifications: notifications}
}

// ParcelUpdate carries the mutable parcel fields. All fields overwrite the
// stored record; Status is applied only when present and must be a legal
// transition from the current status.
type ParcelUpdate struct {
	SenderName       string
	SenderAddress    string
	RecipientName    string
	RecipientAddress string
	RecipientEmail   string
	Description      string
	CurrentLocation  string
	Status           *models.ParcelStatus
}

// ParcelPage is one page of an admin parcel listing.
type ParcelPage struct {
	Items         []models.Parcel `json:"items"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
}

// sortableParcelColumns whitelists the columns a caller may sort by.
var sortableParcelColumns = map[string]string{
	"id":              "id",
	"trackingCode":    "tracking_code",
	"senderName":      "sender_name",
	"recipientName":   "recipient_name",
	"status":          "status",
	"currentLocation": "current_location",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
}

// Create registers a parcel for the given owner. The status is forced to
// PENDING regardless of what the caller supplied, and a fresh tracking code
// is generated; the unique index on tracking_code is the authority on
// collisions, so creation retries on a duplicate-key error.
func (s *ParcelService) Create(ctx context.Context, parcel *models.Parcel, ownerID uint) (*models.Parcel, error) {
	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with ID: %d", ownerID)
		}
		return nil, err
	}

	parcel.UserID = owner.ID
	parcel.Status = models.StatusPending

	var err error
	for attempt := 0; attempt < trackingCodeAttempts; attempt++ {
		parcel.TrackingCode = utils.GenerateTrackingCode()
		err = s.db.WithContext(ctx).Create(parcel).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Printf("Tracking code collision on %s, regenerating", parcel.TrackingCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique tracking code: %w", err)
	}

	s.notifyRecipientCreated(parcel)
	s.notifyOwner(ctx, parcel, "parcel_created",
		fmt.Sprintf("Your parcel %s has been registered.", parcel.TrackingCode))

	return parcel, nil
}

// Update overwrites the parcel's mutable fields and refreshes UpdatedAt. An
// update that changes nothing still emails the recipient.
func (s *ParcelService) Update(ctx context.Context, id uint, patch ParcelUpdate) (*models.Parcel, error) {
	var parcel models.Parcel
	if err := s.db.WithContext(ctx).First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Parcel not found with ID: %d", id)
		}
		return nil, err
	}

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, apperr.BadRequest("Unknown parcel status: %s", *patch.Status)
		}
		if !parcel.Status.CanTransitionTo(*patch.Status) {
			return nil, apperr.BadRequest("Cannot change parcel status from %s to %s.", parcel.Status, *patch.Status)
		}
		parcel.Status = *patch.Status
	}

	parcel.SenderName = patch.SenderName
	parcel.SenderAddress = patch.SenderAddress
	parcel.RecipientName = patch.RecipientName
	parcel.RecipientAddress = patch.RecipientAddress
	parcel.RecipientEmail = patch.RecipientEmail
	parcel.Description = patch.Description
	parcel.CurrentLocation = patch.CurrentLocation

	if err := s.db.WithContext(ctx).Save(&parcel).Error; err != nil {
		return nil, err
	}

	s.notifyRecipientUpdated(&parcel)
	s.notifyOwner(ctx, &parcel, "parcel_updated",
		fmt.Sprintf("Parcel %s: %s", parcel.TrackingCode, parcel.Status))

	return &parcel, nil
}

// ListPaginated returns one page of parcels. A blank search term yields a
// plain page in the requested order; otherwise records match when any of
// tracking code, sender name, recipient name, recipient email or current
// location contains the term, case-insensitively.
func (s *ParcelService) ListPaginated(ctx context.Context, page, size int, sortBy, sortDir, searchTerm string) (*ParcelPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	column, ok := sortableParcelColumns[sortBy]
	if !ok {
		column = "id"
	}
	direction := "asc"
	if strings.EqualFold(sortDir, "desc") {
		direction = "desc"
	}

	query := s.db.WithContext(ctx).Model(&models.Parcel{})
	if term := strings.TrimSpace(searchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			`lower(tracking_code) LIKE ? OR lower(sender_name) LIKE ? OR lower(recipient_name) LIKE ?
			 OR lower(recipient_email) LIKE ? OR lower(current_location) LIKE ?`,
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var parcels []models.Parcel
	err := query.Order(column + " " + direction).
		Offset(page * size).
		Limit(size).
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ParcelPage{
		Items:         parcels,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// ListByOwner returns all parcels owned by the account.
func (s *ParcelService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Parcel, error) {
	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with ID: %d", ownerID)
		}
		return nil, err
	}

	var parcels []models.Parcel
	if err := s.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&parcels).Error; err != nil {
		return nil, err
	}
	return parcels, nil
}

// FindByTrackingCode looks a parcel up by its public tracking code. No
// ownership filtering happens here; the caller enforces authorization.
func (s *ParcelService) FindByTrackingCode(ctx context.Context, code string) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.WithContext(ctx).Where("tracking_code = ?", code).First(&parcel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Parcel not found with Tracking ID: %s", code)
		}
		return nil, err
	}
	return &parcel, nil
}

func (s *ParcelService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Parcel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Parcel not found with ID: %d", id)
	}
	return nil
}

// notifyRecipientCreated emails the recipient about a freshly registered
// parcel. Failures are logged and never surfaced to the caller.
func (s *ParcelService) notifyRecipientCreated(parcel *models.Parcel) {
	if parcel.RecipientEmail == "" {
		log.Printf("Recipient email is missing for parcel %s. Email notification skipped.", parcel.TrackingCode)
		return
	}
	err := utils.SendParcelRegisteredEmail(
		parcel.RecipientEmail,
		parcel.RecipientName,
		parcel.TrackingCode,
		string(parcel.Status),
		parcel.Description,
	)
	if err != nil {
		log.Printf("Failed to send registration email for parcel %s: %v", parcel.TrackingCode, err)
	}
}

func (s *ParcelService) notifyRecipientUpdated(parcel *models.Parcel) {
	if parcel.RecipientEmail == "" {
		log.Printf("Recipient email is missing for parcel %s. Email notification skipped.", parcel.TrackingCode)
		return
	}
	err := utils.SendParcelUpdatedEmail(
		parcel.RecipientEmail,
		parcel.RecipientName,
		parcel.TrackingCode,
		string(parcel.Status),
		parcel.CurrentLocation,
		parcel.Description,
	)
	if err != nil {
		log.Printf("Failed to send update email for parcel %s: %v", parcel.TrackingCode, err)
	}
}

// notifyOwner records an in-app notification for the parcel owner and pushes
// the event to their open websocket connections. Best effort only.
func (s *ParcelService) notifyOwner(ctx context.Context, parcel *models.Parcel, eventType, message string) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Create(ctx, parcel.UserID, parcel.ID, message); err != nil {
		log.Printf("Failed to create notification for parcel %s: %v", parcel.TrackingCode, err)
	}

	event := ParcelEvent{
		Type:         eventType,
		ParcelID:     parcel.ID,
		TrackingCode: parcel.TrackingCode,
		Status:       string(parcel.Status),
		Message:      message,
	}
	s.notifications.Push(parcel.UserID, event)
	if err := PublishParcelUpdate(ctx, parcel.UserID, event); err != nil {
		log.Printf("Failed to publish parcel update for %s: %v", parcel.TrackingCode, err)
	}
}
