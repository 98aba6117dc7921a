package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/trailteams-backend/api/middleware"
	"github.com/angelmondragon/trailteams-backend/internal/auth"
	"github.com/angelmondragon/trailteams-backend/internal/users"
	pkgAuth "github.com/angelmondragon/trailteams-backend/pkg/auth"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	login    auth.LoginRequest
	loggedIn bool
	revoked  string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.login = req
	s.loggedIn = true
	return &auth.LoginResponse{AccessToken: "token", User: &users.UserDTO{ID: uuid.New(), Nickname: "hiker"}}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	s.revoked = accessID
	return nil
}

func (s *stubAuthService) Me(ctx context.Context, openID string) (*users.UserDTO, error) {
	if openID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required")
	}
	return &users.UserDTO{ID: uuid.New(), Nickname: openID}, nil
}

func TestAuthLogin(t *testing.T) {
	svc := &stubAuthService{}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"openId":"wx-open-1","nickname":"Ridge Runner"}`))
	AuthLogin(svc, nil)(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.login.OpenID != "wx-open-1" || svc.login.Nickname == nil || *svc.login.Nickname != "Ridge Runner" {
		t.Fatalf("unexpected login request %+v", svc.login)
	}
	if !strings.Contains(resp.Body.String(), `"access_token":"token"`) {
		t.Fatalf("expected token in body, got %s", resp.Body.String())
	}
}

func TestAuthLoginValidatesBody(t *testing.T) {
	svc := &stubAuthService{}
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"nickname":"x"}`))
	AuthLogin(svc, nil)(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.loggedIn {
		t.Fatal("service must not run on invalid body")
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}

	resp := httptest.NewRecorder()
	AuthLogout(svc, nil)(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.Code)
	}

	token, accessID := mintToken(t)
	handler := middleware.Identity(middleware.IdentityOptions{JWT: testJWT}, nil)(AuthLogout(svc, nil))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if svc.revoked != accessID {
		t.Fatalf("expected %s revoked, got %s", accessID, svc.revoked)
	}
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "trailteams", ExpirationMinutes: 60}

func mintToken(t *testing.T) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, _, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		OpenID: "wx-open-1",
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

func TestAuthMe(t *testing.T) {
	svc := &stubAuthService{}

	resp := httptest.NewRecorder()
	AuthMe(svc, nil)(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.Code)
	}

	token, _ := mintToken(t)
	handler := middleware.Identity(middleware.IdentityOptions{JWT: testJWT}, nil)(AuthMe(svc, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "wx-open-1") {
		t.Fatalf("expected caller profile, got %s", resp.Body.String())
	}
}
