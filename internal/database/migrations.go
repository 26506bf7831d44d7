package database

import (
	"github.com/routegenius/logistics-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Parcel{},
		&models.Feedback{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}

	// Constrain roles and parcel statuses to the known values
	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
	if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('USER', 'ADMIN'))`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE parcels DROP CONSTRAINT IF EXISTS parcels_status_check`)
	if err := db.Exec(`ALTER TABLE parcels ADD CONSTRAINT parcels_status_check CHECK (status IN ('PENDING', 'DISPATCHED', 'IN_TRANSIT', 'DELIVERED', 'CANCELLED', 'RETURNED'))`).Error; err != nil {
		return err
	}

	// Ratings are validated in the service as well; the constraint guards
	// against writes that bypass it.
	db.Exec(`ALTER TABLE feedback DROP CONSTRAINT IF EXISTS feedback_rating_check`)
	if err := db.Exec(`ALTER TABLE feedback ADD CONSTRAINT feedback_rating_check CHECK (rating BETWEEN 1 AND 5)`).Error; err != nil {
		return err
	}

	return nil
}
