package model

import (
	"time"

	"github.com/google/uuid"
)

// MailboxAccount is a Gmail account linked to an internal user.
// (user_id, email) is unique: re-linking the same pair overwrites tokens and
// the sync cursor instead of creating a second row.
type MailboxAccount struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TokenExpiry  time.Time `json:"token_expiry"`
	HistoryID    *string   `json:"history_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
