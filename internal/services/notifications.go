package services

import (
	"context"
	"errors"

	"github.com/routegenius/logistics-backend/internal/apperr"
	"github.com/routegenius/logistics-backend/internal/models"
	"gorm.io/gorm"
)

// NotificationService is the per-user inbox of parcel status messages.
type NotificationService struct {
	db  *gorm.DB
	hub *Hub
}

func NewNotificationService(db *gorm.DB, hub *Hub) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// Create stores an unread notification for a user about a parcel.
func (s *NotificationService) Create(ctx context.Context, userID, parcelID uint, message string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:   userID,
		ParcelID: parcelID,
		Message:  message,
		Read:     false,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, err
	}
	InvalidateUnreadCount(ctx, userID)
	return &notification, nil
}

// Push forwards a parcel event to the user's open websocket connections.
func (s *NotificationService) Push(userID uint, event ParcelEvent) {
	if s.hub == nil {
		return
	}
	s.hub.PushParcelEvent(userID, event)
}

// ListForUser returns all notifications for the account, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the account,
// served from Redis when a cached value is present.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if count, ok := GetCachedUnreadCount(ctx, userID); ok {
		return count, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where(`user_id = ? AND "read" = ?`, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	CacheUnreadCount(ctx, userID, count)
	return count, nil
}

// MarkRead flips the read flag.
func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	var notification models.Notification
	if err := s.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Notification not found with ID: %d", id)
		}
		return err
	}

	if err := s.db.WithContext(ctx).Model(&notification).Update("read", true).Error; err != nil {
		return err
	}
	InvalidateUnreadCount(ctx, notification.UserID)
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	var notification models.Notification
	if err := s.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Notification not found with ID: %d", id)
		}
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&notification).Error; err != nil {
		return err
	}
	InvalidateUnreadCount(ctx, notification.UserID)
	return nil
}
