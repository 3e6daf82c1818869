package models

// Booking and place approval statuses share the same vocabulary: both start
// as pending and are moved to approved or rejected by the responsible party
// (place: admin, booking: place owner).
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Place categories as used by the public listing.
const (
	CategoryNongkrong = "nongkrong"
	CategoryBelajar   = "belajar"
	CategoryDiskusi   = "diskusi"
)

// User roles.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

const (
	// DefaultCapacity is assumed when a place has no capacity configured.
	DefaultCapacity = 10

	// DefaultOpenHours / DefaultCloseHours apply when a place is created
	// without operating hours.
	DefaultOpenHours  = "08:00"
	DefaultCloseHours = "22:00"

	// DefaultImageURL is the placeholder shown for places without a photo.
	DefaultImageURL = "https://via.placeholder.com/300x200?text=Tempat+Nongkrong"

	// WITAOffsetHours is the fixed UTC offset of Asia/Makassar, used by the
	// local time fallback.
	WITAOffsetHours = 8

	// WITAZone is the IANA zone identifier sent to external time providers.
	WITAZone = "Asia/Makassar"

	// RateLimitBookings / RateLimitWindow bound public booking requests per
	// client within the window (seconds).
	RateLimitBookings = 10
	RateLimitWindow   = 60

	// PlaceCacheTTL is the lifetime of the cached approved place listing in
	// seconds.
	PlaceCacheTTL = 5 * 60

	// WorkerQueueSize is the in-memory sync queue capacity.
	WorkerQueueSize = 128
)

// CanTransitionStatus reports whether a booking or place status change is
// allowed. Only pending records may move, and only to approved or rejected;
// both of those are terminal.
func CanTransitionStatus(from, to string) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}
