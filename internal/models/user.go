package models

import "time"

// User is an account on the platform. TelegramChatID is optional; owners who
// set it get booking notifications through the Telegram notifier.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"` // user, owner, admin
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may approve places and manage any booking.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
