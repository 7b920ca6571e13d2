// Package provider implements mail provider adapters.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mailbridge/internal/config"
	"mailbridge/pkg/metrics"
)

// Profile is the slice of the Gmail account profile this service cares
// about: the address identifying the mailbox and the history id used as the
// incremental sync cursor. HistoryID may be empty.
type Profile struct {
	EmailAddress string
	HistoryID    string
}

// Gmail wraps the Google OAuth client and the Gmail profile endpoint.
type Gmail struct {
	oauth   *oauth2.Config
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
	apiOpts []option.ClientOption
}

func NewGmail(cfg config.GoogleConfig, logger *zap.Logger) *Gmail {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
		},
		Endpoint: google.Endpoint,
	}

	cbSettings := gobreaker.Settings{
		Name:        "gmail-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Gmail{
		oauth:  oauthCfg,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		logger: logger,
	}
}

// AuthCodeURL returns the consent URL. offline access plus a forced approval
// prompt so Google re-issues a refresh token on re-consent when it can.
func (g *Gmail) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades a single-use authorization code for tokens. The returned
// token's Expiry is already computed from the provider's expires_in.
func (g *Gmail) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	start := time.Now()
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		metrics.RecordOAuthCall("exchange", "failed", time.Since(start))
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	metrics.RecordOAuthCall("exchange", "success", time.Since(start))
	return token, nil
}

// Profile fetches the linked account's address and history id with the
// freshly issued access token. Any non-2xx from the API surfaces as an error.
func (g *Gmail) Profile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(g.oauth.TokenSource(ctx, token)),
	}, g.apiOpts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	start := time.Now()
	res, err := g.cb.Execute(func() (interface{}, error) {
		return svc.Users.GetProfile("me").Context(ctx).Do()
	})
	if err != nil {
		metrics.RecordOAuthCall("profile", "failed", time.Since(start))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	metrics.RecordOAuthCall("profile", "success", time.Since(start))

	p := res.(*gmail.Profile)

	historyID := ""
	if p.HistoryId != 0 {
		historyID = fmt.Sprintf("%d", p.HistoryId)
	}

	return &Profile{
		EmailAddress: p.EmailAddress,
		HistoryID:    historyID,
	}, nil
}
