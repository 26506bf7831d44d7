package models

import "gorm.io/gorm"

type ParcelStatus string

const (
	StatusPending    ParcelStatus = "PENDING"     // Parcel created, awaiting dispatch
	StatusDispatched ParcelStatus = "DISPATCHED"  // Parcel has left the sender
	StatusInTransit  ParcelStatus = "IN_TRANSIT"  // Parcel is en route to recipient
	StatusDelivered  ParcelStatus = "DELIVERED"   // Parcel has been successfully delivered
	StatusCancelled  ParcelStatus = "CANCELLED"   // Parcel order was cancelled
	StatusReturned   ParcelStatus = "RETURNED"    // Parcel was returned to sender
)

// allowedTransitions maps each status to the statuses it may move to.
// DELIVERED, CANCELLED and RETURNED are terminal.
var allowedTransitions = map[ParcelStatus][]ParcelStatus{
	StatusPending:    {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusInTransit, StatusCancelled, StatusReturned},
	StatusInTransit:  {StatusDelivered, StatusReturned},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusReturned:   {},
}

func (s ParcelStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status may move to target.
// Re-setting the current status is always allowed so that updates that only
// touch other fields (e.g. current location) are not blocked.
func (s ParcelStatus) CanTransitionTo(target ParcelStatus) bool {
	if s == target {
		return true
	}
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type Parcel struct {
	gorm.Model
	TrackingCode     string       `gorm:"column:tracking_code;uniqueIndex;not null" json:"trackingCode"`
	SenderName       string       `gorm:"column:sender_name;not null" json:"senderName"`
	SenderAddress    string       `gorm:"column:sender_address;type:text;not null" json:"senderAddress"`
	RecipientName    string       `gorm:"column:recipient_name;not null" json:"recipientName"`
	RecipientAddress string       `gorm:"column:recipient_address;type:text;not null" json:"recipientAddress"`
	RecipientEmail   string       `gorm:"column:recipient_email" json:"recipientEmail"`
	Description      string       `gorm:"column:description;type:text" json:"description"`
	Status           ParcelStatus `gorm:"column:status;not null;default:PENDING" json:"status"`
	CurrentLocation  string       `gorm:"column:current_location" json:"currentLocation"`
	UserID           uint         `gorm:"column:user_id;not null" json:"userId"`
	User             User         `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name
func (Parcel) TableName() string {
	return "parcels"
}
