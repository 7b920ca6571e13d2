package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailbridge/internal/model"
)

type UserFinder interface {
	FindByAuthID(ctx context.Context, authID string) (*model.User, error)
}

type AccountStore interface {
	ListByUser(ctx context.Context, userID int) ([]*model.MailboxAccount, error)
	FindByUserAndEmail(ctx context.Context, userID int, email string) (*model.MailboxAccount, error)
}

type MailboxHandler struct {
	users    UserFinder
	accounts AccountStore
	logger   *zap.Logger
}

func NewMailboxHandler(users UserFinder, accounts AccountStore, logger *zap.Logger) *MailboxHandler {
	return &MailboxHandler{
		users:    users,
		accounts: accounts,
		logger:   logger,
	}
}

// mailboxView is the secret-free projection returned to clients.
type mailboxView struct {
	Email       string    `json:"email"`
	Active      bool      `json:"active"`
	TokenExpiry time.Time `json:"token_expiry"`
	HistoryID   *string   `json:"history_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListMailboxes handles GET /mailboxes.
func (h *MailboxHandler) ListMailboxes(c *gin.Context) {
	authID, exists := c.Get("auth_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.users.FindByAuthID(c.Request.Context(), authID.(string))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("failed to resolve user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mailboxes"})
		return
	}

	accounts, err := h.accounts.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list mailboxes",
			zap.Int("user_id", user.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mailboxes"})
		return
	}

	views := make([]mailboxView, 0, len(accounts))
	for _, acc := range accounts {
		views = append(views, mailboxView{
			Email:       acc.Email,
			Active:      acc.Active,
			TokenExpiry: acc.TokenExpiry,
			HistoryID:   acc.HistoryID,
			CreatedAt:   acc.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"mailboxes": views})
}

// GetMailbox handles GET /mailboxes/:email.
func (h *MailboxHandler) GetMailbox(c *gin.Context) {
	authID, exists := c.Get("auth_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.users.FindByAuthID(c.Request.Context(), authID.(string))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("failed to resolve user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get mailbox"})
		return
	}

	acc, err := h.accounts.FindByUserAndEmail(c.Request.Context(), user.ID, c.Param("email"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
			return
		}
		h.logger.Error("failed to get mailbox",
			zap.Int("user_id", user.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get mailbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mailbox": mailboxView{
		Email:       acc.Email,
		Active:      acc.Active,
		TokenExpiry: acc.TokenExpiry,
		HistoryID:   acc.HistoryID,
		CreatedAt:   acc.CreatedAt,
	}})
}
