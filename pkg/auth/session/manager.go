package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/angelmondragon/trailteams-backend/pkg/redis"
	"github.com/google/uuid"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(accessID string) string
}

// Manager tracks live access tokens so logout can revoke them before expiry.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Manager{store: client, keyer: client}, nil
}

// Open records a session for accessID that lives as long as the token.
func (m *Manager) Open(ctx context.Context, accessID string, userID uuid.UUID, ttl time.Duration) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(accessID), userID.String(), ttl)
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(accessID))
}

// HasSession reports whether the access ID has not been revoked.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errors.New("access id is required")
	}
	return m.store.Exists(ctx, m.keyer.SessionKey(accessID))
}

// NewAccessID produces the identifier used as the JWT jti and redis key.
func NewAccessID() string {
	return uuid.NewString()
}
