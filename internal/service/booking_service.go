package service

import (
	"context"
	"errors"

	"tempatku/internal/database"
	"tempatku/internal/domain"
	"tempatku/internal/events"
	"tempatku/internal/metrics"
	"tempatku/internal/models"
	"tempatku/internal/openhours"

	"github.com/rs/zerolog"
)

// BookingService runs the admission pipeline: requester lookup, place
// approval gate, canonical-time open check, capacity check, then persist.
type BookingService struct {
	store        domain.Store
	timeResolver domain.TimeResolver
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(store domain.Store, timeResolver domain.TimeResolver, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:        store,
		timeResolver: timeResolver,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// NormalizePartySize coerces a missing or non-positive party size to 1.
func NormalizePartySize(size int) int {
	if size <= 0 {
		return 1
	}
	return size
}

// Admit validates an admission request and creates a pending booking. The
// checks run in a fixed order; the first failing one decides the rejection.
func (s *BookingService) Admit(ctx context.Context, req models.AdmissionRequest) (*models.Booking, error) {
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.IncAdmission("rejected_user")
			return nil, &NotFoundError{Kind: "user", ID: req.UserID}
		}
		return nil, err
	}

	place, err := s.store.GetPlace(ctx, req.PlaceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.IncAdmission("rejected_place")
			return nil, &NotFoundError{Kind: "place", ID: req.PlaceID}
		}
		return nil, err
	}
	if place.Status != models.StatusApproved {
		metrics.IncAdmission("rejected_place")
		return nil, &NotFoundError{Kind: "place", ID: req.PlaceID}
	}

	open, close := place.Hours()
	snapshot := s.timeResolver.Resolve(ctx)
	isOpen, err := openhours.IsOpen(snapshot.TimeOfDay, open, close)
	if err != nil {
		s.logger.Error().Err(err).
			Str("place_id", place.ID).
			Str("open", open).Str("close", close).
			Msg("malformed operating hours")
		return nil, err
	}
	if !isOpen {
		metrics.IncAdmission("rejected_closed")
		s.logger.Info().
			Str("place_id", place.ID).
			Str("current_time", snapshot.TimeOfDay).
			Str("time_source", string(snapshot.Source)).
			Msg("admission rejected: venue closed")
		return nil, &VenueClosedError{OpenHours: open, CloseHours: close}
	}

	partySize := NormalizePartySize(req.PartySize)
	if limit := place.EffectiveCapacity(); partySize > limit {
		metrics.IncAdmission("rejected_capacity")
		return nil, &CapacityExceededError{Limit: limit}
	}

	booking := &models.Booking{
		PlaceID:       place.ID,
		UserID:        user.ID,
		OwnerID:       place.OwnerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PartySize:     partySize,
		Date:          req.Date,
		Time:          req.Time,
		Status:        models.StatusPending,
	}
	if booking.CustomerName == "" {
		booking.CustomerName = user.Name
	}
	if booking.CustomerEmail == "" {
		booking.CustomerEmail = user.Email
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncAdmission("accepted")
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("place_id", place.ID).
		Str("user_id", user.ID).
		Int("party_size", partySize).
		Str("time_source", string(snapshot.Source)).
		Msg("booking admitted")

	s.publishEvent(events.EventBookingCreated, booking, place.Name)
	s.enqueueUpsert(ctx, booking)

	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Terminal statuses are
// immutable; only pending bookings can change.
func (s *BookingService) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Booking, error) {
	if !models.ValidStatus(newStatus) {
		return nil, &InvalidTransitionError{From: "", Attempted: newStatus}
	}

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{Kind: "booking", ID: id}
		}
		return nil, err
	}

	if !models.CanTransitionStatus(booking.Status, newStatus) {
		return nil, &InvalidTransitionError{From: booking.Status, Attempted: newStatus}
	}

	if err := s.store.UpdateBookingStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	booking.Status = newStatus

	eventType := events.EventBookingApproved
	if newStatus == models.StatusRejected {
		eventType = events.EventBookingRejected
	}
	s.publishEvent(eventType, booking, "")
	s.enqueueStatusUpdate(ctx, booking)

	return booking, nil
}

// Summarize builds the requester-facing projection of a booking.
func (s *BookingService) Summarize(ctx context.Context, booking *models.Booking) (*models.BookingSummary, error) {
	place, err := s.store.GetPlace(ctx, booking.PlaceID)
	if err != nil {
		return nil, err
	}
	return &models.BookingSummary{
		ID:            booking.ID,
		CustomerName:  booking.CustomerName,
		PlaceName:     place.Name,
		PlaceLocation: place.Location,
		PartySize:     booking.PartySize,
		Date:          booking.Date,
		Time:          booking.Time,
		Status:        booking.Status,
	}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Kind: "booking", ID: id}
	}
	return booking, err
}

func (s *BookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID string) ([]*models.Booking, error) {
	return s.store.ListBookingsByOwner(ctx, ownerID)
}

func (s *BookingService) ListBookingsByDateRange(ctx context.Context, start, end string) ([]*models.Booking, error) {
	return s.store.ListBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{Kind: "booking", ID: id}
		}
		return err
	}

	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.publishEvent(events.EventBookingDeleted, booking, "")
	s.enqueueDelete(ctx, booking.ID)
	return nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, placeName string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:     booking.ID,
		PlaceID:       booking.PlaceID,
		PlaceName:     placeName,
		OwnerID:       booking.OwnerID,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		PartySize:     booking.PartySize,
		Date:          booking.Date,
		Time:          booking.Time,
		Status:        booking.Status,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueUpsert(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueUpsert(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingService) enqueueStatusUpdate(ctx context.Context, booking *models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueStatusUpdate(ctx, booking.ID, booking.Status); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingService) enqueueDelete(ctx context.Context, bookingID string) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueDelete(ctx, bookingID); err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Msg("sheets enqueue error")
	}
}
