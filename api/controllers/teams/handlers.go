package teams

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/api/middleware"
	"github.com/angelmondragon/trailteams-backend/api/responses"
	"github.com/angelmondragon/trailteams-backend/api/validators"
	internalteams "github.com/angelmondragon/trailteams-backend/internal/teams"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

// caller pulls the open id set by the identity middleware.
func caller(r *http.Request) (string, error) {
	openID := middleware.OpenIDFromContext(r.Context())
	if openID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity required")
	}
	return openID, nil
}

func unavailable(svc internalteams.Service) error {
	if svc == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "team service unavailable")
	}
	return nil
}

// teamHandler resolves the caller and the {teamId} path parameter before fn runs.
func teamHandler(svc internalteams.Service, logg *logger.Logger, fn func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openID, err := caller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		teamID, err := validators.ParseUUIDParam(r, "teamId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := fn(r.Context(), w, r, openID, teamID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}

// Create handles POST /teams.
func Create(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openID, err := caller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTeamRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		team, err := svc.CreateTeam(r.Context(), openID, internalteams.CreateTeamInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, team)
	}
}

// ListMine handles GET /teams.
func ListMine(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openID, err := caller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListMyTeams(r.Context(), openID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// MemberUserIDs handles GET /teams/member-user-ids for feed-style consumers.
func MemberUserIDs(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openID, err := caller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := svc.TeamMemberUserIDs(r.Context(), openID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ids)
	}
}

// Join handles POST /teams/join.
func Join(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		openID, err := caller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body joinRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		team, err := svc.JoinByInviteCode(r.Context(), openID, body.InviteCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, team)
	}
}

// Get handles GET /teams/{teamId}.
func Get(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		team, err := svc.GetTeam(ctx, openID, teamID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, team)
		return nil
	})
}

// Update handles PUT /teams/{teamId}.
func Update(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		var body updateTeamRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		team, err := svc.UpdateTeam(ctx, openID, teamID, internalteams.UpdateTeamInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, team)
		return nil
	})
}

// Delete handles DELETE /teams/{teamId}.
func Delete(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		if err := svc.DeleteTeam(ctx, openID, teamID); err != nil {
			return err
		}
		responses.WriteNoContent(w)
		return nil
	})
}

// Apply handles POST /teams/{teamId}/apply.
func Apply(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		member, err := svc.ApplyToJoin(ctx, openID, teamID)
		if err != nil {
			return err
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
		return nil
	})
}

// Leave handles POST /teams/{teamId}/leave.
func Leave(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		if err := svc.LeaveTeam(ctx, openID, teamID); err != nil {
			return err
		}
		responses.WriteNoContent(w)
		return nil
	})
}

// RegenerateInviteCode handles POST /teams/{teamId}/regenerate-invite-code.
func RegenerateInviteCode(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		code, err := svc.RegenerateInviteCode(ctx, openID, teamID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, inviteCodeResponse{InviteCode: code})
		return nil
	})
}

// Members handles GET /teams/{teamId}/members.
func Members(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		members, err := svc.ListMembers(ctx, openID, teamID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, members)
		return nil
	})
}

// Applications handles GET /teams/{teamId}/applications.
func Applications(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		pending, err := svc.ListPendingApplications(ctx, openID, teamID)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, pending)
		return nil
	})
}

// Review handles PUT /teams/{teamId}/members/{membershipId}/approve.
func Review(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		membershipID, err := validators.ParseUUIDParam(r, "membershipId")
		if err != nil {
			return err
		}
		var body reviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return err
		}
		member, err := svc.ReviewApplication(ctx, openID, teamID, membershipID, *body.Approve)
		if err != nil {
			return err
		}
		responses.WriteSuccess(w, member)
		return nil
	})
}

// RemoveMember handles DELETE /teams/{teamId}/members/{membershipId}.
func RemoveMember(svc internalteams.Service, logg *logger.Logger) http.HandlerFunc {
	return teamHandler(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, openID string, teamID uuid.UUID) error {
		membershipID, err := validators.ParseUUIDParam(r, "membershipId")
		if err != nil {
			return err
		}
		if err := svc.RemoveMember(ctx, openID, teamID, membershipID); err != nil {
			return err
		}
		responses.WriteNoContent(w)
		return nil
	})
}
