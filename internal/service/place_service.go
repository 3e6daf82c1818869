package service

import (
	"context"
	"errors"

	"tempatku/internal/database"
	"tempatku/internal/domain"
	"tempatku/internal/events"
	"tempatku/internal/models"

	"github.com/rs/zerolog"
)

// PlaceService manages venue records and the admin approval lifecycle. The
// public approved listing is served through the cache; every mutation that
// can change it invalidates the cached set.
type PlaceService struct {
	store    domain.Store
	cache    domain.PlaceCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewPlaceService(store domain.Store, cache domain.PlaceCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *PlaceService {
	return &PlaceService{
		store:    store,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreatePlace registers a new venue. It always enters the lifecycle as
// pending regardless of what the caller set.
func (s *PlaceService) CreatePlace(ctx context.Context, place *models.Place) error {
	place.Status = models.StatusPending
	place.ApplyDefaults()
	return s.store.CreatePlace(ctx, place)
}

func (s *PlaceService) UpdatePlace(ctx context.Context, place *models.Place) error {
	if err := s.store.UpdatePlace(ctx, place); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{Kind: "place", ID: place.ID}
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Approve moves a place out of pending. Terminal statuses are immutable.
func (s *PlaceService) Approve(ctx context.Context, id, newStatus string) (*models.Place, error) {
	if !models.ValidStatus(newStatus) {
		return nil, &InvalidTransitionError{From: "", Attempted: newStatus}
	}

	place, err := s.store.GetPlace(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{Kind: "place", ID: id}
		}
		return nil, err
	}

	if !models.CanTransitionStatus(place.Status, newStatus) {
		return nil, &InvalidTransitionError{From: place.Status, Attempted: newStatus}
	}

	if err := s.store.UpdatePlaceStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	place.Status = newStatus

	s.invalidateCache(ctx)

	eventType := events.EventPlaceApproved
	if newStatus == models.StatusRejected {
		eventType = events.EventPlaceRejected
	}
	s.publishEvent(eventType, place)

	return place, nil
}

func (s *PlaceService) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	place, err := s.store.GetPlace(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Kind: "place", ID: id}
	}
	return place, err
}

// ListApproved serves the public place listing, cache first.
func (s *PlaceService) ListApproved(ctx context.Context) ([]*models.Place, error) {
	if s.cache != nil {
		places, ok, err := s.cache.GetApprovedPlaces(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("place cache read failed")
		} else if ok {
			return places, nil
		}
	}

	places, err := s.store.ListPlacesByStatus(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetApprovedPlaces(ctx, places); err != nil {
			s.logger.Warn().Err(err).Msg("place cache write failed")
		}
	}
	return places, nil
}

func (s *PlaceService) ListPending(ctx context.Context) ([]*models.Place, error) {
	return s.store.ListPlacesByStatus(ctx, models.StatusPending)
}

func (s *PlaceService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Place, error) {
	return s.store.ListPlacesByOwner(ctx, ownerID)
}

func (s *PlaceService) DeletePlace(ctx context.Context, id string) error {
	if err := s.store.DeletePlace(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{Kind: "place", ID: id}
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *PlaceService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("place cache invalidate failed")
	}
}

func (s *PlaceService) publishEvent(eventType string, place *models.Place) {
	if s.eventBus == nil {
		return
	}

	payload := events.PlaceEventPayload{
		PlaceID: place.ID,
		OwnerID: place.OwnerID,
		Name:    place.Name,
		Status:  place.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("place_id", place.ID).Msg("publish event error")
	}
}
