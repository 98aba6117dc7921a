package controllers

import (
	"net/http"

	"github.com/angelmondragon/trailteams-backend/api/middleware"
	"github.com/angelmondragon/trailteams-backend/api/responses"
	"github.com/angelmondragon/trailteams-backend/api/validators"
	"github.com/angelmondragon/trailteams-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

var errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")

// AuthLogin exchanges an open id for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Login(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session behind the caller's bearer token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}
		if err := svc.Logout(ctx, middleware.AccessIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AuthMe returns the profile of whoever the identity middleware resolved.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}
		profile, err := svc.Me(ctx, middleware.OpenIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
