package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"mailbridge/internal/model"
	"mailbridge/internal/mq"
	"mailbridge/pkg/metrics"
)

type LinkEventStore interface {
	Insert(ctx context.Context, e *model.LinkEvent) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, key string) bool
}

// MailboxLinkedHandler writes the audit trail for mailbox.linked events.
type MailboxLinkedHandler struct {
	repo    LinkEventStore
	deduper Deduper
	logger  *zap.Logger
}

func NewMailboxLinkedHandler(repo LinkEventStore, deduper Deduper, logger *zap.Logger) *MailboxLinkedHandler {
	return &MailboxLinkedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *MailboxLinkedHandler) HandleMailboxLinked(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()

	var p mq.MailboxLinkedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal mailbox linked payload", zap.Error(err))
		return err
	}

	// The publisher retries on redelivery; one audit row per link is enough.
	dedupKey := p.AccountID.String() + ":" + p.LinkedAt.UTC().Format(time.RFC3339Nano)
	if !h.deduper.AcquireOnce(ctx, "mailbox_linked_audit", dedupKey) {
		h.logger.Info("Duplicate mailbox linked event skipped",
			zap.String("account_id", p.AccountID.String()),
		)
		metrics.IncrementLinkEvent("duplicate")
		return nil
	}

	event := &model.LinkEvent{
		AccountID: p.AccountID,
		UserID:    p.UserID,
		Email:     p.Email,
		LinkedAt:  p.LinkedAt,
	}

	if err := h.repo.Insert(ctx, event); err != nil {
		h.logger.Error("Failed to insert link event",
			zap.String("account_id", p.AccountID.String()),
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
		metrics.IncrementLinkEvent("failed")
		return err
	}

	h.logger.Info("Link event recorded",
		zap.String("account_id", p.AccountID.String()),
		zap.Int("user_id", p.UserID),
	)
	metrics.IncrementLinkEvent("success")
	metrics.RecordMQConsumeLatency(mq.RoutingKeyMailboxLinked, "mailbox.linked.audit.q", time.Since(start))

	return nil
}
