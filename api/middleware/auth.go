package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/trailteams-backend/api/responses"
	pkgAuth "github.com/angelmondragon/trailteams-backend/pkg/auth"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

// VisitorHeader carries a raw open id for clients that have not logged in.
const VisitorHeader = "X-User-Id"

// IdentityOptions controls which credentials Identity accepts.
type IdentityOptions struct {
	JWT                config.JWTConfig
	Sessions           session.AccessSessionChecker
	AllowVisitorHeader bool
}

// Identity resolves the caller from a bearer token, falling back to the visitor
// header when enabled. Requests with neither are rejected.
func Identity(opts IdentityOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw != "" {
				ctx, err := fromBearer(r.Context(), opts, raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(withCallerFields(ctx, logg)))
				return
			}

			if opts.AllowVisitorHeader {
				if openID := strings.TrimSpace(r.Header.Get(VisitorHeader)); openID != "" {
					ctx := WithOpenID(r.Context(), openID)
					next.ServeHTTP(w, r.WithContext(withCallerFields(ctx, logg)))
					return
				}
			}

			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		})
	}
}

func fromBearer(ctx context.Context, opts IdentityOptions, raw string) (context.Context, error) {
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(opts.JWT, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if strings.TrimSpace(claims.OpenID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing open id")
	}

	if opts.Sessions != nil {
		ok, err := opts.Sessions.HasSession(ctx, claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	ctx = WithOpenID(ctx, claims.OpenID)
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
	return ctx, nil
}

func withCallerFields(ctx context.Context, logg *logger.Logger) context.Context {
	if logg == nil {
		return ctx
	}
	fields := map[string]any{"open_id": OpenIDFromContext(ctx)}
	if userID := UserIDFromContext(ctx); userID != "" {
		fields["user_id"] = userID
	}
	return logg.WithFields(ctx, fields)
}
