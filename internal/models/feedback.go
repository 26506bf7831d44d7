package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxFeedbackLength is the longest feedback text accepted.
const MaxFeedbackLength = 500

type Feedback struct {
	gorm.Model
	FeedbackText string    `gorm:"column:feedback_text;type:varchar(500);not null" json:"feedbackText"`
	Rating       int       `gorm:"column:rating;not null" json:"rating"`
	UserID       uint      `gorm:"column:user_id;not null" json:"userId"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	ParcelID     uint      `gorm:"column:parcel_id;uniqueIndex;not null" json:"parcelId"` // One feedback entry per parcel
	Parcel       Parcel    `gorm:"foreignKey:ParcelID" json:"-"`
	SubmittedAt  time.Time `gorm:"column:submitted_at;not null" json:"submittedAt"`
}

// TableName specifies the table name
func (Feedback) TableName() string {
	return "feedback"
}
