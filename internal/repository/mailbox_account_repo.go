package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailbridge/internal/model"
	"mailbridge/internal/util"
	"mailbridge/pkg/metrics"
)

type MailboxAccountRepository struct {
	db     *pgxpool.Pool
	cipher *util.TokenCipher
}

func NewMailboxAccountRepository(db *pgxpool.Pool, cipher *util.TokenCipher) *MailboxAccountRepository {
	return &MailboxAccountRepository{db: db, cipher: cipher}
}

// Upsert inserts the account or, when (user_id, email) already exists,
// overwrites tokens, expiry and history id and forces active back to true.
// A re-consent without a fresh refresh token (empty RefreshToken) keeps the
// previously stored refresh token instead of blanking it.
func (r *MailboxAccountRepository) Upsert(ctx context.Context, acc *model.MailboxAccount) error {
	accessToken, err := r.cipher.Seal(acc.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	refreshToken, err := r.cipher.Seal(acc.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	query := `
        INSERT INTO mailbox_accounts
            (id, user_id, email, access_token, refresh_token, token_expiry, history_id, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
        ON CONFLICT (user_id, email) DO UPDATE SET
            access_token  = EXCLUDED.access_token,
            refresh_token = CASE
                WHEN EXCLUDED.refresh_token <> '' THEN EXCLUDED.refresh_token
                ELSE mailbox_accounts.refresh_token
            END,
            token_expiry  = EXCLUDED.token_expiry,
            history_id    = EXCLUDED.history_id,
            active        = TRUE,
            updated_at    = NOW()
        RETURNING id
    `

	start := time.Now()
	err = r.db.QueryRow(ctx, query,
		acc.ID,
		acc.UserID,
		acc.Email,
		accessToken,
		refreshToken,
		acc.TokenExpiry,
		acc.HistoryID,
	).Scan(&acc.ID)
	metrics.RecordDBQueryDuration("upsert", "mailbox_accounts", time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to upsert mailbox account: %w", err)
	}
	return nil
}

// FindByUserAndEmail returns the account for the unique (user_id, email)
// pair with tokens opened.
func (r *MailboxAccountRepository) FindByUserAndEmail(ctx context.Context, userID int, email string) (*model.MailboxAccount, error) {
	query := `
        SELECT id, user_id, email, access_token, refresh_token, token_expiry, history_id, active, created_at, updated_at
        FROM mailbox_accounts
        WHERE user_id = $1 AND email = $2
    `
	var acc model.MailboxAccount
	err := r.db.QueryRow(ctx, query, userID, email).Scan(
		&acc.ID,
		&acc.UserID,
		&acc.Email,
		&acc.AccessToken,
		&acc.RefreshToken,
		&acc.TokenExpiry,
		&acc.HistoryID,
		&acc.Active,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := r.openTokens(&acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ListByUser returns all accounts linked by a user, newest first.
func (r *MailboxAccountRepository) ListByUser(ctx context.Context, userID int) ([]*model.MailboxAccount, error) {
	query := `
        SELECT id, user_id, email, access_token, refresh_token, token_expiry, history_id, active, created_at, updated_at
        FROM mailbox_accounts
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.MailboxAccount
	for rows.Next() {
		var acc model.MailboxAccount
		err := rows.Scan(
			&acc.ID,
			&acc.UserID,
			&acc.Email,
			&acc.AccessToken,
			&acc.RefreshToken,
			&acc.TokenExpiry,
			&acc.HistoryID,
			&acc.Active,
			&acc.CreatedAt,
			&acc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := r.openTokens(&acc); err != nil {
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

func (r *MailboxAccountRepository) openTokens(acc *model.MailboxAccount) error {
	access, err := r.cipher.Open(acc.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to open access token: %w", err)
	}
	refresh, err := r.cipher.Open(acc.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to open refresh token: %w", err)
	}
	acc.AccessToken = access
	acc.RefreshToken = refresh
	return nil
}
