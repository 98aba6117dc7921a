package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	keys    map[string]time.Duration
	failSet error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]time.Duration{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if m.failSet != nil {
		return false, m.failSet
	}
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = ttl
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "tt:idempotency:" + scope + ":" + id
}

func TestLedgerClaimOnce(t *testing.T) {
	store := newMemoryStore()
	ledger, err := NewLedger(store, "outbox-publisher", 48*time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	first, err := ledger.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.True(t, first)

	second, err := ledger.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.False(t, second)

	key := "tt:idempotency:evt:outbox-publisher:" + eventID.String()
	require.Equal(t, 48*time.Hour, store.keys[key])
}

func TestLedgerReleaseAllowsRetry(t *testing.T) {
	store := newMemoryStore()
	ledger, err := NewLedger(store, "outbox-publisher", time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	_, err = ledger.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.NoError(t, ledger.Release(context.Background(), eventID))

	again, err := ledger.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.True(t, again)
}

func TestLedgerConsumersAreIsolated(t *testing.T) {
	store := newMemoryStore()
	publisher, err := NewLedger(store, "outbox-publisher", time.Hour)
	require.NoError(t, err)
	audit, err := NewLedger(store, "team-audit", time.Hour)
	require.NoError(t, err)

	eventID := uuid.New()
	ok, err := publisher.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = audit.Claim(context.Background(), eventID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLedgerRejectsBadInput(t *testing.T) {
	_, err := NewLedger(newMemoryStore(), "  ", time.Hour)
	require.ErrorIs(t, err, ErrMissingConsumer)

	_, err = NewLedger(nil, "outbox-publisher", time.Hour)
	require.Error(t, err)

	ledger, err := NewLedger(newMemoryStore(), "outbox-publisher", time.Hour)
	require.NoError(t, err)
	_, err = ledger.Claim(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrMissingEventID)
	require.ErrorIs(t, ledger.Release(context.Background(), uuid.Nil), ErrMissingEventID)
}

func TestLedgerPropagatesStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.failSet = errors.New("redis down")
	ledger, err := NewLedger(store, "outbox-publisher", time.Hour)
	require.NoError(t, err)

	_, err = ledger.Claim(context.Background(), uuid.New())
	require.EqualError(t, err, "redis down")
}
