package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/trailteams-backend/pkg/auth"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/google/uuid"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

type capturedCaller struct {
	openID   string
	userID   string
	accessID string
	called   bool
}

func identityHandler(opts IdentityOptions, captured *capturedCaller) http.Handler {
	return Identity(opts, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called = true
		captured.openID = OpenIDFromContext(r.Context())
		captured.userID = UserIDFromContext(r.Context())
		captured.accessID = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestIdentityRejectsMissingCredentials(t *testing.T) {
	var captured capturedCaller
	handler := identityHandler(IdentityOptions{JWT: testJWT, AllowVisitorHeader: true}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if captured.called {
		t.Fatal("handler should not run without credentials")
	}
}

func TestIdentityRejectsInvalidToken(t *testing.T) {
	var captured capturedCaller
	handler := identityHandler(IdentityOptions{JWT: testJWT, Sessions: stubSessionVerifier{ok: true}, AllowVisitorHeader: true}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	req.Header.Set(VisitorHeader, "wx-open-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("a bad token must not fall back to the visitor header, got %d", resp.Code)
	}
}

func TestIdentityAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	token, accessID := mintTestToken(t, userID, "wx-open-1")

	var captured capturedCaller
	handler := identityHandler(IdentityOptions{JWT: testJWT, Sessions: stubSessionVerifier{ok: true}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.openID != "wx-open-1" || captured.userID != userID.String() || captured.accessID != accessID {
		t.Fatalf("unexpected caller %+v", captured)
	}
}

func TestIdentityRejectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New(), "wx-open-1")

	var captured capturedCaller
	handler := identityHandler(IdentityOptions{JWT: testJWT, Sessions: stubSessionVerifier{ok: false}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestIdentitySessionStoreFailure(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New(), "wx-open-1")

	var captured capturedCaller
	handler := identityHandler(IdentityOptions{JWT: testJWT, Sessions: stubSessionVerifier{err: errors.New("redis down")}}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestIdentityVisitorHeader(t *testing.T) {
	tests := []struct {
		name   string
		allow  bool
		header string
		want   int
		wantID string
	}{
		{"allowed", true, " wx-open-9 ", http.StatusOK, "wx-open-9"},
		{"disabled", false, "wx-open-9", http.StatusUnauthorized, ""},
		{"blank", true, "   ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		var captured capturedCaller
		handler := identityHandler(IdentityOptions{JWT: testJWT, AllowVisitorHeader: tt.allow}, &captured)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VisitorHeader, tt.header)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
		if captured.openID != tt.wantID {
			t.Fatalf("%s: expected open id %q got %q", tt.name, tt.wantID, captured.openID)
		}
		if captured.userID != "" {
			t.Fatalf("%s: visitor requests carry no user id", tt.name)
		}
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID, openID string) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, _, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		OpenID: openID,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
