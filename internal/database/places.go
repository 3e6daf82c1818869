package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tempatku/internal/models"

	"github.com/google/uuid"
)

const placeColumns = `id, owner_id, name, location, description, category, image,
       capacity, open_hours, close_hours, status, lat, lng, created_at, updated_at`

func (db *DB) CreatePlace(ctx context.Context, place *models.Place) error {
	if place.ID == "" {
		place.ID = uuid.NewString()
	}
	place.ApplyDefaults()
	now := time.Now()
	place.CreatedAt = now
	place.UpdatedAt = now

	query := `INSERT INTO places (` + placeColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		place.ID, place.OwnerID, place.Name, place.Location, place.Description,
		place.Category, place.Image, place.Capacity, place.OpenHours,
		place.CloseHours, place.Status, place.Lat, place.Lng, now, now)
	if err != nil {
		return fmt.Errorf("create place: %w", err)
	}
	return nil
}

func (db *DB) GetPlace(ctx context.Context, id string) (*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = ?`
	row := db.db.QueryRowContext(ctx, query, id)

	place, err := scanPlace(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get place: %w", err)
	}
	return place, nil
}

func (db *DB) UpdatePlace(ctx context.Context, place *models.Place) error {
	query := `UPDATE places SET name = ?, location = ?, description = ?, category = ?,
              image = ?, capacity = ?, open_hours = ?, close_hours = ?, lat = ?, lng = ?,
              updated_at = ? WHERE id = ?`
	res, err := db.db.ExecContext(ctx, query,
		place.Name, place.Location, place.Description, place.Category,
		place.Image, place.Capacity, place.OpenHours, place.CloseHours,
		place.Lat, place.Lng, time.Now(), place.ID)
	if err != nil {
		return fmt.Errorf("update place: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) UpdatePlaceStatus(ctx context.Context, id, status string) error {
	query := `UPDATE places SET status = ?, updated_at = ? WHERE id = ?`
	res, err := db.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update place status: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeletePlace(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) ListPlacesByStatus(ctx context.Context, status string) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE status = ? ORDER BY created_at DESC`
	return db.queryPlaces(ctx, query, status)
}

func (db *DB) ListPlacesByOwner(ctx context.Context, ownerID string) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE owner_id = ? ORDER BY created_at DESC`
	return db.queryPlaces(ctx, query, ownerID)
}

func (db *DB) ListPlaces(ctx context.Context) ([]*models.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places ORDER BY created_at DESC`
	return db.queryPlaces(ctx, query)
}

func (db *DB) queryPlaces(ctx context.Context, query string, args ...any) ([]*models.Place, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	for rows.Next() {
		place, err := scanPlace(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

func scanPlace(scan func(dest ...any) error) (*models.Place, error) {
	var place models.Place
	err := scan(
		&place.ID,
		&place.OwnerID,
		&place.Name,
		&place.Location,
		&place.Description,
		&place.Category,
		&place.Image,
		&place.Capacity,
		&place.OpenHours,
		&place.CloseHours,
		&place.Status,
		&place.Lat,
		&place.Lng,
		&place.CreatedAt,
		&place.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &place, nil
}
