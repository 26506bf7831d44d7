package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID   uint   `gorm:"column:user_id;not null;index" json:"userId"`
	User     User   `gorm:"foreignKey:UserID" json:"-"`
	ParcelID uint   `gorm:"column:parcel_id;not null" json:"parcelId"`
	Parcel   Parcel `gorm:"foreignKey:ParcelID" json:"-"`
	Message  string `gorm:"column:message;type:text;not null" json:"message"`
	Read     bool   `gorm:"column:read;not null;default:false" json:"read"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}
