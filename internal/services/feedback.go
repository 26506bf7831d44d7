package services

import (
	"context"
	"errors"
	"time"

	"github.com/routegenius/logistics-backend/internal/apperr"
	"github.com/routegenius/logistics-backend/internal/models"
	"gorm.io/gorm"
)

// FeedbackService stores one feedback record per delivered parcel, written
// by the parcel owner only.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// Submit validates, in order: user exists, parcel exists, parcel is
// DELIVERED, the submitter owns the parcel, no feedback exists for the
// parcel yet, and the rating is within 1..5. Nothing is written unless every
// check passes.
func (s *FeedbackService) Submit(ctx context.Context, userID, parcelID uint, text string, rating int) (*models.Feedback, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with ID: %d", userID)
		}
		return nil, err
	}

	var parcel models.Parcel
	if err := s.db.WithContext(ctx).First(&parcel, parcelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Parcel not found with ID: %d", parcelID)
		}
		return nil, err
	}

	if parcel.Status != models.StatusDelivered {
		return nil, apperr.BadRequest("Feedback can only be submitted for delivered parcels.")
	}

	if parcel.UserID != userID {
		return nil, apperr.Forbidden("You can only submit feedback for parcels you own.")
	}

	exists, err := s.ExistsForParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BadRequest("Feedback for this parcel has already been submitted.")
	}

	if rating < 1 || rating > 5 {
		return nil, apperr.BadRequest("Rating must be between 1 and 5 stars.")
	}
	if len(text) > models.MaxFeedbackLength {
		return nil, apperr.BadRequest("Feedback text must be at most %d characters.", models.MaxFeedbackLength)
	}

	feedback := models.Feedback{
		FeedbackText: text,
		Rating:       rating,
		UserID:       userID,
		ParcelID:     parcelID,
		SubmittedAt:  time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("Feedback for this parcel has already been submitted.")
		}
		return nil, err
	}
	return &feedback, nil
}

// ListAll returns every feedback record. Administrator view.
func (s *FeedbackService) ListAll(ctx context.Context) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := s.db.WithContext(ctx).Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) GetByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Feedback not found with ID: %d", id)
		}
		return nil, err
	}
	return &feedback, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Feedback{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Feedback not found with ID: %d", id)
	}
	return nil
}

// ExistsForParcel reports whether feedback has already been left for a
// parcel. The client uses this to decide whether to show the form.
func (s *FeedbackService) ExistsForParcel(ctx context.Context, parcelID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("parcel_id = ?", parcelID).
		Count(&count).Error
	return count > 0, err
}
