package domain

import (
	"context"
	"time"

	"tempatku/internal/models"
)

// Store is the document store the platform persists through. Implemented by
// internal/database; services depend on this interface only.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	GetPlace(ctx context.Context, id string) (*models.Place, error)
	CreatePlace(ctx context.Context, place *models.Place) error
	UpdatePlace(ctx context.Context, place *models.Place) error
	UpdatePlaceStatus(ctx context.Context, id, status string) error
	DeletePlace(ctx context.Context, id string) error
	ListPlacesByStatus(ctx context.Context, status string) ([]*models.Place, error)
	ListPlacesByOwner(ctx context.Context, ownerID string) ([]*models.Place, error)
	ListPlaces(ctx context.Context) ([]*models.Place, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id, status string) error
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID string) ([]*models.Booking, error)
	ListBookingsByDateRange(ctx context.Context, start, end string) ([]*models.Booking, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error
}

// TimeResolver yields the current WITA time. Never fails; fallback results
// are tagged on the snapshot.
type TimeResolver interface {
	Resolve(ctx context.Context) models.TimeSnapshot
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker queues booking mutations for the sheets mirror.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatusUpdate(ctx context.Context, bookingID, status string) error
	EnqueueDelete(ctx context.Context, bookingID string) error
}

// PlaceCache caches the public approved-place listing.
type PlaceCache interface {
	GetApprovedPlaces(ctx context.Context) ([]*models.Place, bool, error)
	SetApprovedPlaces(ctx context.Context, places []*models.Place) error
	Invalidate(ctx context.Context) error
}

// RateLimiter bounds how often a client key may perform an action within a
// window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BookingService is the booking admission and lifecycle engine.
type BookingService interface {
	Admit(ctx context.Context, req models.AdmissionRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, newStatus string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListOwnerBookings(ctx context.Context, ownerID string) ([]*models.Booking, error)
	ListBookingsByDateRange(ctx context.Context, start, end string) ([]*models.Booking, error)
	Summarize(ctx context.Context, booking *models.Booking) (*models.BookingSummary, error)
	DeleteBooking(ctx context.Context, id string) error
}

// PlaceService manages venue records and the admin approval lifecycle.
type PlaceService interface {
	CreatePlace(ctx context.Context, place *models.Place) error
	UpdatePlace(ctx context.Context, place *models.Place) error
	Approve(ctx context.Context, id, newStatus string) (*models.Place, error)
	GetPlace(ctx context.Context, id string) (*models.Place, error)
	ListApproved(ctx context.Context) ([]*models.Place, error)
	ListPending(ctx context.Context) ([]*models.Place, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Place, error)
	DeletePlace(ctx context.Context, id string) error
}

// UserService exposes account lookups and provisioning.
type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}
