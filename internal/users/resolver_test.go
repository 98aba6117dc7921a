package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
)

type fakeUserStore struct {
	byOpenID map[string]*models.User
	calls    int
	err      error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byOpenID: map[string]*models.User{}}
}

func (f *fakeUserStore) FirstOrCreateByOpenID(ctx context.Context, openID, nickname string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.byOpenID[openID]; ok {
		return user, nil
	}
	user := &models.User{ID: uuid.New(), OpenID: openID, Nickname: nickname}
	f.byOpenID[openID] = user
	return user, nil
}

type fakeIdentityCache struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setHits int
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeIdentityCache) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeIdentityCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.setHits++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeIdentityCache) IdentityKey(openID string) string {
	return "tt:identity:" + openID
}

func testIdentityConfig() config.IdentityConfig {
	return config.IdentityConfig{CacheTTL: time.Hour, DefaultNickname: "徒步爱好者"}
}

func TestResolveOrCreateCachesResolvedID(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeIdentityCache()
	resolver, err := NewResolver(store, cache, testIdentityConfig(), nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.ResolveOrCreate(context.Background(), " visitor-1 ")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if store.byOpenID["visitor-1"].Nickname != "徒步爱好者" {
		t.Fatalf("expected default nickname, got %q", store.byOpenID["visitor-1"].Nickname)
	}
	if cache.values["tt:identity:visitor-1"] != id.String() {
		t.Fatalf("expected cached id %s, got %q", id, cache.values["tt:identity:visitor-1"])
	}
	if cache.ttls["tt:identity:visitor-1"] != time.Hour {
		t.Fatalf("expected cache ttl of 1h, got %v", cache.ttls["tt:identity:visitor-1"])
	}

	again, err := resolver.ResolveOrCreate(context.Background(), "visitor-1")
	if err != nil {
		t.Fatalf("second ResolveOrCreate: %v", err)
	}
	if again != id {
		t.Fatalf("expected stable id %s, got %s", id, again)
	}
	if store.calls != 1 {
		t.Fatalf("expected cache hit on second call, store called %d times", store.calls)
	}
}

func TestResolveOrCreateFallsBackWhenCacheFails(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeIdentityCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	resolver, err := NewResolver(store, cache, testIdentityConfig(), nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.ResolveOrCreate(context.Background(), "visitor-2")
	if err != nil {
		t.Fatalf("expected cache failures to be tolerated, got %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected resolved id")
	}
}

func TestResolveOrCreateIgnoresMalformedCacheEntry(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeIdentityCache()
	cache.values["tt:identity:visitor-3"] = "not-a-uuid"
	resolver, _ := NewResolver(store, cache, testIdentityConfig(), nil)

	id, err := resolver.ResolveOrCreate(context.Background(), "visitor-3")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if cache.values["tt:identity:visitor-3"] != id.String() {
		t.Fatalf("expected cache entry to be repaired")
	}
}

func TestResolveOrCreateRejectsBadInput(t *testing.T) {
	resolver, _ := NewResolver(newFakeUserStore(), nil, testIdentityConfig(), nil)

	cases := []struct {
		name   string
		openID string
		code   pkgerrors.Code
	}{
		{name: "blank", openID: "   ", code: pkgerrors.CodeUnauthorized},
		{name: "too long", openID: strings.Repeat("x", maxOpenIDLength+1), code: pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolver.ResolveOrCreate(context.Background(), tc.openID)
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestResolveOrCreateWrapsStoreFailure(t *testing.T) {
	store := newFakeUserStore()
	store.err = errors.New("connection reset")
	resolver, _ := NewResolver(store, nil, testIdentityConfig(), nil)

	_, err := resolver.ResolveOrCreate(context.Background(), "visitor-4")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewResolverValidatesInput(t *testing.T) {
	if _, err := NewResolver(nil, nil, testIdentityConfig(), nil); err == nil {
		t.Fatal("expected error for missing store")
	}
	if _, err := NewResolver(newFakeUserStore(), nil, config.IdentityConfig{}, nil); err == nil {
		t.Fatal("expected error for missing default nickname")
	}
}
