package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailbridge/internal/model"
	"mailbridge/internal/mq"
)

type fakeLinkEventStore struct {
	inserted []*model.LinkEvent
	failWith error
}

func (f *fakeLinkEventStore) Insert(ctx context.Context, e *model.LinkEvent) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.inserted = append(f.inserted, e)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, handler string, key string) bool {
	k := handler + ":" + key
	if f.seen[k] {
		return false
	}
	f.seen[k] = true
	return true
}

func payloadBytes(t *testing.T, p mq.MailboxLinkedPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestHandleMailboxLinkedInsertsEvent(t *testing.T) {
	store := &fakeLinkEventStore{}
	h := NewMailboxLinkedHandler(store, newFakeDeduper(), zap.NewNop())

	p := mq.MailboxLinkedPayload{
		AccountID: uuid.New(),
		UserID:    7,
		Email:     "a@x.com",
		LinkedAt:  time.Now().UTC(),
	}

	err := h.HandleMailboxLinked(context.Background(), payloadBytes(t, p))

	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, p.AccountID, store.inserted[0].AccountID)
	assert.Equal(t, 7, store.inserted[0].UserID)
	assert.Equal(t, "a@x.com", store.inserted[0].Email)
}

func TestHandleMailboxLinkedDuplicateSkipped(t *testing.T) {
	store := &fakeLinkEventStore{}
	h := NewMailboxLinkedHandler(store, newFakeDeduper(), zap.NewNop())

	p := mq.MailboxLinkedPayload{
		AccountID: uuid.New(),
		UserID:    7,
		Email:     "a@x.com",
		LinkedAt:  time.Now().UTC(),
	}
	raw := payloadBytes(t, p)

	require.NoError(t, h.HandleMailboxLinked(context.Background(), raw))
	require.NoError(t, h.HandleMailboxLinked(context.Background(), raw))

	assert.Len(t, store.inserted, 1)
}

func TestHandleMailboxLinkedBadPayload(t *testing.T) {
	store := &fakeLinkEventStore{}
	h := NewMailboxLinkedHandler(store, newFakeDeduper(), zap.NewNop())

	err := h.HandleMailboxLinked(context.Background(), json.RawMessage(`{bad`))

	assert.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestHandleMailboxLinkedInsertFailure(t *testing.T) {
	store := &fakeLinkEventStore{failWith: errors.New("db down")}
	h := NewMailboxLinkedHandler(store, newFakeDeduper(), zap.NewNop())

	p := mq.MailboxLinkedPayload{AccountID: uuid.New(), UserID: 7, Email: "a@x.com", LinkedAt: time.Now()}

	err := h.HandleMailboxLinked(context.Background(), payloadBytes(t, p))

	assert.Error(t, err)
}
