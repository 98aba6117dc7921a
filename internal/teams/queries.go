package teams

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/internal/users"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
)

// ListMembers returns the team roster. The owner also sees pending and
// rejected rows so they can be reviewed or purged.
func (s *service) ListMembers(ctx context.Context, openID string, teamID uuid.UUID) (out []MemberDTO, err error) {
	defer s.observe(OpListMembers, time.Now(), &err)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	team, caller, err := s.loadTeamForCaller(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(OpListMembers, subject{callerID: userID, team: team, caller: caller}); err != nil {
		return nil, err
	}

	var rows []models.TeamMembership
	if team.IsOwner(userID) {
		rows, err = s.memberships.ListByTeam(ctx, team.ID)
	} else {
		rows, err = s.memberships.ListByTeamAndStatus(ctx, team.ID, enums.MembershipStatusApproved)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members")
	}
	return s.memberViews(ctx, rows)
}

func (s *service) ListPendingApplications(ctx context.Context, openID string, teamID uuid.UUID) (out []MemberDTO, err error) {
	defer s.observe(OpListPendingApplications, time.Now(), &err)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	team, err := loadTeam(ctx, s.teams, teamID)
	if err != nil {
		return nil, err
	}
	if err := authorize(OpListPendingApplications, subject{callerID: userID, team: team}); err != nil {
		return nil, err
	}
	rows, err := s.memberships.ListByTeamAndStatus(ctx, team.ID, enums.MembershipStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending applications")
	}
	return s.memberViews(ctx, rows)
}

func (s *service) GetTeam(ctx context.Context, openID string, teamID uuid.UUID) (dto *TeamDTO, err error) {
	defer s.observe(OpGetTeam, time.Now(), &err)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	team, caller, err := s.loadTeamForCaller(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(OpGetTeam, subject{callerID: userID, team: team, caller: caller}); err != nil {
		return nil, err
	}
	return s.teamView(ctx, team, userID)
}

// ListMyTeams returns every team the caller is an approved member of.
func (s *service) ListMyTeams(ctx context.Context, openID string) (out []TeamDTO, err error) {
	defer s.observe(OpListMyTeams, time.Now(), &err)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	rows, err := s.memberships.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	if len(rows) == 0 {
		return []TeamDTO{}, nil
	}

	teamIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		teamIDs = append(teamIDs, row.TeamID)
	}
	teamRows, err := s.teams.FindByIDs(ctx, teamIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load teams")
	}
	counts, err := s.memberships.CountApprovedByTeams(ctx, teamIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count team members")
	}

	ownerIDs := make([]uuid.UUID, 0, len(teamRows))
	for _, team := range teamRows {
		ownerIDs = append(ownerIDs, team.OwnerID)
	}
	owners, err := s.lookupUsers(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	out = make([]TeamDTO, 0, len(teamRows))
	for i := range teamRows {
		team := &teamRows[i]
		out = append(out, toTeamDTO(team, owners[team.OwnerID], counts[team.ID], userID))
	}
	return out, nil
}

func (s *service) TeamMemberUserIDs(ctx context.Context, openID string) (ids []uuid.UUID, err error) {
	defer s.observe(OpTeamMemberUserIDs, time.Now(), &err)

	userID, err := s.identity.ResolveOrCreate(ctx, openID)
	if err != nil {
		return nil, err
	}
	return s.MemberUserIDs(ctx, userID)
}

// MemberUserIDs returns the distinct approved members across every team
// userID is approved in, sorted. A user without approved memberships gets an
// empty list.
func (s *service) MemberUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.memberships.ListApprovedByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list memberships")
	}
	if len(rows) == 0 {
		return []uuid.UUID{}, nil
	}
	teamIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		teamIDs = append(teamIDs, row.TeamID)
	}
	memberIDs, err := s.memberships.ListApprovedUserIDsByTeams(ctx, teamIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team member ids")
	}

	seen := make(map[uuid.UUID]struct{}, len(memberIDs))
	out := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// loadTeamForCaller loads the team and the caller's membership in it. A
// missing membership is not an error.
func (s *service) loadTeamForCaller(ctx context.Context, teamID, userID uuid.UUID) (*models.Team, *models.TeamMembership, error) {
	team, err := loadTeam(ctx, s.teams, teamID)
	if err != nil {
		return nil, nil, err
	}
	caller, err := s.memberships.FindByTeamAndUser(ctx, team.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return team, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load caller membership")
	}
	return team, caller, nil
}

func (s *service) teamView(ctx context.Context, team *models.Team, viewerID uuid.UUID) (*TeamDTO, error) {
	count, err := s.memberships.CountApprovedByTeam(ctx, team.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count team members")
	}
	owners, err := s.lookupUsers(ctx, []uuid.UUID{team.OwnerID})
	if err != nil {
		return nil, err
	}
	dto := toTeamDTO(team, owners[team.OwnerID], count, viewerID)
	return &dto, nil
}

func (s *service) memberView(ctx context.Context, m *models.TeamMembership) (*MemberDTO, error) {
	views, err := s.memberViews(ctx, []models.TeamMembership{*m})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) memberViews(ctx context.Context, rows []models.TeamMembership) ([]MemberDTO, error) {
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}
	profiles, err := s.lookupUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toMemberDTO(&rows[i], profiles[rows[i].UserID]))
	}
	return out, nil
}

func (s *service) lookupUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profiles")
	}
	for id, row := range users.IndexByID(rows) {
		row := row
		out[id] = &row
	}
	return out, nil
}
