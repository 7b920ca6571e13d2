package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailbridge/internal/model"
	"mailbridge/pkg/metrics"
)

// Outcome tags appended to the settings URL. The reason never carries
// internal error detail; that goes to the log only.
const (
	outcomeConnected = "connected"

	reasonErrorPassthrough = "error-passthrough"
	reasonMissingParams    = "missing_params"
	reasonTokenExchange    = "token_exchange"
)

type LinkService interface {
	AuthCodeURL(authID string) string
	HandleCallback(ctx context.Context, code, state string) (*model.MailboxAccount, error)
}

type OAuthHandler struct {
	link        LinkService
	settingsURL string
	logger      *zap.Logger
}

func NewOAuthHandler(link LinkService, settingsURL string, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		link:        link,
		settingsURL: settingsURL,
		logger:      logger,
	}
}

// GmailConnect handles GET /oauth/gmail/connect.
// The caller's auth identifier becomes the OAuth state, so the callback can
// tell whose mailbox is being linked.
func (h *OAuthHandler) GmailConnect(c *gin.Context) {
	authID, exists := c.Get("auth_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	c.Redirect(http.StatusFound, h.link.AuthCodeURL(authID.(string)))
}

// GmailCallback handles GET /oauth/gmail/callback, the redirect back from
// Google. Every path ends in exactly one redirect to the settings page.
func (h *OAuthHandler) GmailCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("gmail consent declined", zap.String("error", errParam))
		h.redirectError(c, reasonErrorPassthrough)
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.logger.Warn("malformed gmail callback",
			zap.Bool("has_code", code != ""),
			zap.Bool("has_state", state != ""),
		)
		h.redirectError(c, reasonMissingParams)
		return
	}

	acc, err := h.link.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		// All downstream failures collapse to one external reason code.
		h.logger.Error("mailbox link failed", zap.Error(err))
		h.redirectError(c, reasonTokenExchange)
		return
	}

	h.logger.Info("mailbox connected",
		zap.Int("user_id", acc.UserID),
		zap.String("email", acc.Email),
	)
	metrics.RecordLinkAttempt(outcomeConnected)
	c.Redirect(http.StatusFound, fmt.Sprintf("%s?mailbox=%s", h.settingsURL, outcomeConnected))
}

func (h *OAuthHandler) redirectError(c *gin.Context, reason string) {
	metrics.RecordLinkAttempt(reason)
	c.Redirect(http.StatusFound, fmt.Sprintf("%s?mailbox=error&reason=%s", h.settingsURL, reason))
}
