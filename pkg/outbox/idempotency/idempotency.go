// Package idempotency records which outbox envelopes a consumer has already
// handled. Entries live in redis under tt:idempotency:evt:<consumer>:<event_id>
// and expire after the ledger TTL.
package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingConsumer = errors.New("idempotency: consumer name is required")
	ErrMissingEventID  = errors.New("idempotency: event id is required")
)

// Store is the slice of the redis client the ledger needs.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Ledger claims event ids for a single consumer.
type Ledger struct {
	store    Store
	consumer string
	ttl      time.Duration
}

func NewLedger(store Store, consumer string, ttl time.Duration) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("idempotency: store is required")
	}
	consumer = strings.TrimSpace(consumer)
	if consumer == "" {
		return nil, ErrMissingConsumer
	}
	if ttl < 0 {
		return nil, errors.New("idempotency: ttl must be non-negative")
	}
	return &Ledger{store: store, consumer: consumer, ttl: ttl}, nil
}

func (l *Ledger) Consumer() string { return l.consumer }

// Claim reports whether the caller is the first to see eventID. A false
// result means another attempt already claimed it and the work should be skipped.
func (l *Ledger) Claim(ctx context.Context, eventID uuid.UUID) (bool, error) {
	key, err := l.key(eventID)
	if err != nil {
		return false, err
	}
	return l.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl)
}

// Release drops a claim so a later attempt can retry the event.
func (l *Ledger) Release(ctx context.Context, eventID uuid.UUID) error {
	key, err := l.key(eventID)
	if err != nil {
		return err
	}
	return l.store.Del(ctx, key)
}

func (l *Ledger) key(eventID uuid.UUID) (string, error) {
	if eventID == uuid.Nil {
		return "", ErrMissingEventID
	}
	return l.store.IdempotencyKey("evt:"+l.consumer, eventID.String()), nil
}
