package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tempatku/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &models.User{Name: "Andi", Email: "andi@example.com"}
	require.NoError(t, db.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Andi", got.Name)

	byEmail, err := db.GetUserByEmail(ctx, "andi@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	got.Role = models.RoleOwner
	got.TelegramChatID = 12345
	require.NoError(t, db.UpdateUser(ctx, got))

	updated, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, updated.Role)
	assert.Equal(t, int64(12345), updated.TelegramChatID)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.UpdateUser(ctx, &models.User{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.DeleteUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	place := &models.Place{OwnerID: "owner-1", Name: "Kedai Uventa", Location: "Jl. Moh. Yamin, Palu"}
	require.NoError(t, db.CreatePlace(ctx, place))
	assert.NotEmpty(t, place.ID)
	assert.Equal(t, models.StatusPending, place.Status)
	assert.Equal(t, models.DefaultCapacity, place.Capacity)
	assert.Equal(t, models.DefaultOpenHours, place.OpenHours)

	got, err := db.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kedai Uventa", got.Name)

	got.Capacity = 30
	got.OpenHours, got.CloseHours = "21:00", "02:00"
	require.NoError(t, db.UpdatePlace(ctx, got))

	updated, err := db.GetPlace(ctx, place.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, updated.Capacity)
	assert.Equal(t, "21:00", updated.OpenHours)

	require.NoError(t, db.UpdatePlaceStatus(ctx, place.ID, models.StatusApproved))

	approved, err := db.ListPlacesByStatus(ctx, models.StatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	pending, err := db.ListPlacesByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	byOwner, err := db.ListPlacesByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	all, err := db.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, db.DeletePlace(ctx, place.ID))
	_, err = db.GetPlace(ctx, place.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := &models.Booking{
		PlaceID:       "place-1",
		UserID:        "user-1",
		OwnerID:       "owner-1",
		CustomerName:  "Sari",
		CustomerEmail: "sari@example.com",
		PartySize:     4,
		Date:          "2025-06-10",
		Time:          "19:00",
	}
	require.NoError(t, db.CreateBooking(ctx, booking))
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.StatusPending, booking.Status)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.PartySize)
	assert.Equal(t, "owner-1", got.OwnerID)

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusApproved))
	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	byOwner, err := db.ListBookingsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, byOwner, 1)

	inRange, err := db.ListBookingsByDateRange(ctx, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	assert.Len(t, inRange, 1)

	outOfRange, err := db.ListBookingsByDateRange(ctx, "2025-07-01", "2025-07-31")
	require.NoError(t, err)
	assert.Empty(t, outOfRange)

	require.NoError(t, db.DeleteBooking(ctx, booking.ID))
	_, err = db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: "upsert", BookingID: "b-1", Payload: `{"booking_id":"b-1"}`}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	assert.NotZero(t, task.ID)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "upsert", pending[0].TaskType)

	// Retry with a future backoff is not picked up.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "quota", &future))

	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Retry whose delay elapsed is picked up again.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "retry", "quota", &past))

	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)

	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, "completed", "", nil))
	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
