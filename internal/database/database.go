package database

import (
	"fmt"
	"os"

	"github.com/routegenius/logistics-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	// TranslateError maps driver unique-violation errors to
	// gorm.ErrDuplicatedKey, which the parcel service relies on when
	// retrying tracking-code generation.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Parcel{},
		&models.Feedback{},
		&models.Notification{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
