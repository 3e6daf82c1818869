package models

import "time"

// Booking is a reservation request against a place. OwnerID is copied from
// the place at creation time; a later ownership change does not touch
// existing bookings.
type Booking struct {
	ID            string    `json:"id"`
	PlaceID       string    `json:"place_id"`
	UserID        string    `json:"user_id"`
	OwnerID       string    `json:"owner_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	PartySize     int       `json:"party_size"`
	Date          string    `json:"date"` // YYYY-MM-DD
	Time          string    `json:"time"` // HH:MM
	Status        string    `json:"status"` // pending, approved, rejected
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AdmissionRequest is an inbound booking request before admission checks.
// PartySize may be absent or non-positive; the engine coerces it to 1.
type AdmissionRequest struct {
	UserID        string `json:"user_id"`
	PlaceID       string `json:"place_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	PartySize     int    `json:"party_size,omitempty"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// BookingSummary is the projection returned to the requester after a
// successful admission.
type BookingSummary struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customer_name"`
	PlaceName     string `json:"place_name"`
	PlaceLocation string `json:"place_location"`
	PartySize     int    `json:"party_size"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
}
