package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailbridge/internal/model"
)

type LinkEventRepository struct {
	db *pgxpool.Pool
}

func NewLinkEventRepository(db *pgxpool.Pool) *LinkEventRepository {
	return &LinkEventRepository{db: db}
}

// Insert appends one audit row for a successful mailbox link.
func (r *LinkEventRepository) Insert(ctx context.Context, e *model.LinkEvent) error {
	query := `
        INSERT INTO mailbox_link_events (account_id, user_id, email, linked_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, e.AccountID, e.UserID, e.Email, e.LinkedAt).Scan(&e.ID)
}
