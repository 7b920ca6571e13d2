package link

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"mailbridge/internal/model"
	"mailbridge/internal/mq"
	"mailbridge/internal/provider"
)

// ErrUserNotFound means the OAuth state did not resolve to a known user.
// The state is presumed stale or corrupt; the flow must not be retried.
var ErrUserNotFound = errors.New("no user for state")

// MailProvider is the slice of the Gmail adapter the linker needs.
type MailProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Profile(ctx context.Context, token *oauth2.Token) (*provider.Profile, error)
}

type UserStore interface {
	FindByAuthID(ctx context.Context, authID string) (*model.User, error)
}

type AccountStore interface {
	Upsert(ctx context.Context, acc *model.MailboxAccount) error
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Service struct {
	provider  MailProvider
	users     UserStore
	accounts  AccountStore
	publisher Publisher
	logger    *zap.Logger
}

func NewService(p MailProvider, users UserStore, accounts AccountStore, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		provider:  p,
		users:     users,
		accounts:  accounts,
		publisher: publisher,
		logger:    logger,
	}
}

// AuthCodeURL builds the consent URL for a user, carrying the user's auth
// identifier as the OAuth state so the callback can resolve who linked.
func (s *Service) AuthCodeURL(authID string) string {
	return s.provider.AuthCodeURL(authID)
}

// HandleCallback runs the linking sequence for a provider callback:
// exchange the code, fetch the account profile, resolve the internal user
// from state, upsert the linked account. Strictly sequential, no retries;
// the authorization code is single-use.
func (s *Service) HandleCallback(ctx context.Context, code, state string) (*model.MailboxAccount, error) {
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.provider.Profile(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByAuthID(ctx, state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var historyID *string
	if profile.HistoryID != "" {
		historyID = &profile.HistoryID
	}

	acc := &model.MailboxAccount{
		ID:           uuid.New(),
		UserID:       user.ID,
		Email:        profile.EmailAddress,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		HistoryID:    historyID,
		Active:       true,
	}

	if err := s.accounts.Upsert(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("mailbox linked",
		zap.Int("user_id", user.ID),
		zap.String("email", acc.Email),
	)

	// Best effort: the link is already durable, a publish failure must not
	// turn a persisted success into a reported failure.
	payload := mq.MailboxLinkedPayload{
		AccountID: acc.ID,
		UserID:    user.ID,
		Email:     acc.Email,
		HistoryID: profile.HistoryID,
		LinkedAt:  time.Now(),
	}
	if err := s.publisher.Publish(mq.RoutingKeyMailboxLinked, payload); err != nil {
		s.logger.Error("failed to publish mailbox.linked event",
			zap.Int("user_id", user.ID),
			zap.Error(err),
		)
	}

	return acc, nil
}
