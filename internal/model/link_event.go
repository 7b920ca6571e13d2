package model

import (
	"time"

	"github.com/google/uuid"
)

// LinkEvent is one row of the mailbox link audit trail, written by the
// worker from mailbox.linked events.
type LinkEvent struct {
	ID        int       `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	LinkedAt  time.Time `json:"linked_at"`
}
