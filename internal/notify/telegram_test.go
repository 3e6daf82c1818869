package notify

import (
	"context"
	"io"
	"testing"
	"time"

	"tempatku/internal/events"
	"tempatku/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

type stubStore struct {
	mock.Mock
}

func (m *stubStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *stubStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (m *stubStore) CreateUser(ctx context.Context, u *models.User) error  { return nil }
func (m *stubStore) UpdateUser(ctx context.Context, u *models.User) error  { return nil }
func (m *stubStore) DeleteUser(ctx context.Context, id string) error       { return nil }
func (m *stubStore) ListUsers(ctx context.Context) ([]*models.User, error) { return nil, nil }
func (m *stubStore) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	return nil, nil
}
func (m *stubStore) CreatePlace(ctx context.Context, p *models.Place) error      { return nil }
func (m *stubStore) UpdatePlace(ctx context.Context, p *models.Place) error      { return nil }
func (m *stubStore) UpdatePlaceStatus(ctx context.Context, id, s string) error   { return nil }
func (m *stubStore) DeletePlace(ctx context.Context, id string) error            { return nil }
func (m *stubStore) ListPlaces(ctx context.Context) ([]*models.Place, error)     { return nil, nil }
func (m *stubStore) ListPlacesByStatus(ctx context.Context, s string) ([]*models.Place, error) {
	return nil, nil
}
func (m *stubStore) ListPlacesByOwner(ctx context.Context, o string) ([]*models.Place, error) {
	return nil, nil
}
func (m *stubStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return nil, nil
}
func (m *stubStore) CreateBooking(ctx context.Context, b *models.Booking) error  { return nil }
func (m *stubStore) UpdateBookingStatus(ctx context.Context, id, s string) error { return nil }
func (m *stubStore) DeleteBooking(ctx context.Context, id string) error          { return nil }
func (m *stubStore) ListBookings(ctx context.Context) ([]*models.Booking, error) { return nil, nil }
func (m *stubStore) ListBookingsByOwner(ctx context.Context, o string) ([]*models.Booking, error) {
	return nil, nil
}
func (m *stubStore) ListBookingsByDateRange(ctx context.Context, s, e string) ([]*models.Booking, error) {
	return nil, nil
}
func (m *stubStore) CreateSyncTask(ctx context.Context, t *models.SyncTask) error { return nil }
func (m *stubStore) GetPendingSyncTasks(ctx context.Context, l int) ([]models.SyncTask, error) {
	return nil, nil
}
func (m *stubStore) UpdateSyncTaskStatus(ctx context.Context, id int64, s, e string, n *time.Time) error {
	return nil
}

func TestBookingCreatedNotifiesOwner(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &fakeSender{}
	store := new(stubStore)
	store.On("GetUser", mock.Anything, "owner-1").
		Return(&models.User{ID: "owner-1", TelegramChatID: 4242}, nil).Once()

	bus := events.NewEventBus()
	NewNotifier(sender, store, &logger).Register(bus)

	err := bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:    "b-1",
		OwnerID:      "owner-1",
		CustomerName: "Sari",
		PartySize:    4,
		Date:         "2026-08-30",
		Time:         "16:00",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(4242), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "b-1")
	assert.Contains(t, sender.sent[0].Text, "Sari")
}

func TestOwnerWithoutChatIsSkipped(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &fakeSender{}
	store := new(stubStore)
	store.On("GetUser", mock.Anything, "owner-2").
		Return(&models.User{ID: "owner-2"}, nil).Once()

	bus := events.NewEventBus()
	NewNotifier(sender, store, &logger).Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, events.BookingEventPayload{
		BookingID: "b-2",
		OwnerID:   "owner-2",
	}))
	assert.Empty(t, sender.sent)
}

func TestPlaceApprovedNotifiesOwner(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &fakeSender{}
	store := new(stubStore)
	store.On("GetUser", mock.Anything, "owner-3").
		Return(&models.User{ID: "owner-3", TelegramChatID: 7}, nil).Once()

	bus := events.NewEventBus()
	NewNotifier(sender, store, &logger).Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventPlaceApproved, events.PlaceEventPayload{
		PlaceID: "p-1",
		OwnerID: "owner-3",
		Name:    "Kedai Uventa",
		Status:  models.StatusApproved,
	}))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Kedai Uventa")
}
