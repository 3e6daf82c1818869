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

const bookingColumns = `id, place_id, user_id, owner_id, customer_name, customer_email,
       party_size, date, time, status, created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := `INSERT INTO bookings (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		booking.ID, booking.PlaceID, booking.UserID, booking.OwnerID,
		booking.CustomerName, booking.CustomerEmail, booking.PartySize,
		booking.Date, booking.Time, booking.Status, now, now)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	row := db.db.QueryRowContext(ctx, query, id)

	booking, err := scanBooking(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	res, err := db.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return db.queryBookings(ctx, query)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE owner_id = ? ORDER BY created_at DESC`
	return db.queryBookings(ctx, query, ownerID)
}

func (db *DB) ListBookingsByDateRange(ctx context.Context, start, end string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE date BETWEEN ? AND ?
              ORDER BY date, time`
	return db.queryBookings(ctx, query, start, end)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBooking(scan func(dest ...any) error) (*models.Booking, error) {
	var booking models.Booking
	err := scan(
		&booking.ID,
		&booking.PlaceID,
		&booking.UserID,
		&booking.OwnerID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.PartySize,
		&booking.Date,
		&booking.Time,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
