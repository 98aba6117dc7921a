package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/trailteams-backend/internal/users"
	pkgAuth "github.com/angelmondragon/trailteams-backend/pkg/auth"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, openID string) (*users.UserDTO, error)
}

type service struct {
	identity identityLoader
	profiles profileWriter
	sessions sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

type identityLoader interface {
	LoadOrCreate(ctx context.Context, openID string) (*models.User, error)
}

type profileWriter interface {
	UpdateProfile(ctx context.Context, id uuid.UUID, nickname, avatar *string) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string, userID uuid.UUID, ttl time.Duration) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Identity       identityLoader
	Profiles       profileWriter
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Clock          func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Identity == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile writer is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.JWTConfig.AccessTokenTTL() <= 0 {
		return nil, fmt.Errorf("jwt expiration must be positive")
	}
	now := params.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		identity: params.Identity,
		profiles: params.Profiles,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.identity.LoadOrCreate(ctx, req.OpenID)
	if err != nil {
		return nil, err
	}

	nickname := trimmedOrNil(req.Nickname)
	avatar := trimmedOrNil(req.Avatar)
	if nickname != nil || avatar != nil {
		if err := s.profiles.UpdateProfile(ctx, user.ID, nickname, avatar); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		if nickname != nil {
			user.Nickname = *nickname
		}
		if avatar != nil {
			user.Avatar = avatar
		}
	}

	now := s.now()
	accessID := session.NewAccessID()
	accessToken, claims, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		OpenID: user.OpenID,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.sessions.Open(ctx, accessID, user.ID, s.jwtCfg.AccessTokenTTL()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        users.FromModel(user),
	}, nil
}

// Logout revokes the session behind the token's jti. Revoking twice is not an error.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Me returns the caller's profile. Like every identity-bearing request it
// creates the user on first sight.
func (s *service) Me(ctx context.Context, openID string) (*users.UserDTO, error) {
	if strings.TrimSpace(openID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required")
	}
	user, err := s.identity.LoadOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
