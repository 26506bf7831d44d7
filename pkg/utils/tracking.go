package utils

import (
	"strings"

	"github.com/google/uuid"
)

// TrackingCodeLength is the fixed length of public parcel tracking codes.
const TrackingCodeLength = 16

// GenerateTrackingCode returns a 16-character uppercase alphanumeric code
// derived from a random UUID. Uniqueness is enforced by the database index
// on parcels.tracking_code; callers retry on a duplicate-key error.
func GenerateTrackingCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:TrackingCodeLength])
}
