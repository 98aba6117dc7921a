package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	redisclient "github.com/angelmondragon/trailteams-backend/pkg/redis"
)

const maxOpenIDLength = 128

type userStore interface {
	FirstOrCreateByOpenID(ctx context.Context, openID, nickname string) (*models.User, error)
}

type identityCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	IdentityKey(openID string) string
}

// Resolver maps external open ids onto internal user ids, creating the user on
// first contact. Lookups are cached in redis.
type Resolver struct {
	users userStore
	cache identityCache
	cfg   config.IdentityConfig
	logg  *logger.Logger
}

// NewResolver wires the resolver. cache may be nil, in which case every call
// reaches the database.
func NewResolver(users userStore, cache identityCache, cfg config.IdentityConfig, logg *logger.Logger) (*Resolver, error) {
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if strings.TrimSpace(cfg.DefaultNickname) == "" {
		return nil, fmt.Errorf("default nickname required")
	}
	return &Resolver{users: users, cache: cache, cfg: cfg, logg: logg}, nil
}

// ResolveOrCreate returns the internal id for openID.
func (r *Resolver) ResolveOrCreate(ctx context.Context, openID string) (uuid.UUID, error) {
	openID, err := normalizeOpenID(openID)
	if err != nil {
		return uuid.Nil, err
	}
	if id, ok := r.cached(ctx, openID); ok {
		return id, nil
	}
	user, err := r.loadOrCreate(ctx, openID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// LoadOrCreate always reads the user row and refreshes the cache entry.
func (r *Resolver) LoadOrCreate(ctx context.Context, openID string) (*models.User, error) {
	openID, err := normalizeOpenID(openID)
	if err != nil {
		return nil, err
	}
	return r.loadOrCreate(ctx, openID)
}

func (r *Resolver) loadOrCreate(ctx context.Context, openID string) (*models.User, error) {
	user, err := r.users.FirstOrCreateByOpenID(ctx, openID, r.cfg.DefaultNickname)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user identity")
	}
	r.remember(ctx, openID, user.ID)
	return user, nil
}

func (r *Resolver) cached(ctx context.Context, openID string) (uuid.UUID, bool) {
	if r.cache == nil {
		return uuid.Nil, false
	}
	raw, err := r.cache.Get(ctx, r.cache.IdentityKey(openID))
	if err != nil {
		if !redisclient.IsMiss(err) {
			r.warn(ctx, "identity cache read failed", err)
		}
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		r.warn(ctx, "identity cache held malformed id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (r *Resolver) remember(ctx context.Context, openID string, id uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, r.cache.IdentityKey(openID), id.String(), r.cfg.CacheTTL); err != nil {
		r.warn(ctx, "identity cache write failed", err)
	}
}

func (r *Resolver) warn(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	logCtx := ctx
	if err != nil {
		logCtx = r.logg.WithField(ctx, "error", err.Error())
	}
	r.logg.Warn(logCtx, msg)
}

func normalizeOpenID(openID string) (string, error) {
	trimmed := strings.TrimSpace(openID)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required")
	}
	if len(trimmed) > maxOpenIDLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "open id too long").
			WithDetails(map[string]any{"max_length": maxOpenIDLength})
	}
	return trimmed, nil
}
