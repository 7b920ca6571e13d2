package mq

import (
	"time"

	"github.com/google/uuid"
)

const RoutingKeyMailboxLinked = "mailbox.linked"

// MailboxLinkedPayload is published after a mailbox account upsert commits.
type MailboxLinkedPayload struct {
	AccountID uuid.UUID `json:"account_id"`
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	HistoryID string    `json:"history_id,omitempty"`
	LinkedAt  time.Time `json:"linked_at"`
}
