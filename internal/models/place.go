package models

import "time"

// Place is a venue submitted by an owner. It is invisible to the public
// booking flow until an admin approves it.
type Place struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Capacity    int       `json:"capacity"`
	OpenHours   string    `json:"open_hours"`
	CloseHours  string    `json:"close_hours"`
	Status      string    `json:"status"` // pending, approved, rejected
	Lat         float64   `json:"lat,omitempty"`
	Lng         float64   `json:"lng,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplyDefaults fills the fields the owner is allowed to omit.
func (p *Place) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.Category == "" {
		p.Category = CategoryNongkrong
	}
	if p.Image == "" {
		p.Image = DefaultImageURL
	}
	if p.Capacity <= 0 {
		p.Capacity = DefaultCapacity
	}
	if p.OpenHours == "" {
		p.OpenHours = DefaultOpenHours
	}
	if p.CloseHours == "" {
		p.CloseHours = DefaultCloseHours
	}
}

// EffectiveCapacity returns the booking limit, falling back to the default
// when the stored value is unset.
func (p *Place) EffectiveCapacity() int {
	if p.Capacity <= 0 {
		return DefaultCapacity
	}
	return p.Capacity
}

// Hours returns the operating window, substituting defaults for missing
// fields so evaluation always has both ends.
func (p *Place) Hours() (open, close string) {
	open, close = p.OpenHours, p.CloseHours
	if open == "" {
		open = DefaultOpenHours
	}
	if close == "" {
		close = DefaultCloseHours
	}
	return open, close
}
