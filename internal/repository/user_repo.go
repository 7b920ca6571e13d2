package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailbridge/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByAuthID returns the user owning the given external auth identifier.
// Returns pgx.ErrNoRows when the identifier maps to no user.
func (r *UserRepository) FindByAuthID(ctx context.Context, authID string) (*model.User, error) {
	query := `
        SELECT id, auth_id, email, created_at
        FROM users
        WHERE auth_id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, authID).Scan(
		&u.ID, &u.AuthID, &u.Email, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
