package teams

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/internal/memberships"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
)

// Operation names a team use case for authorization and metrics.
type Operation string

const (
	OpCreateTeam              Operation = "create_team"
	OpUpdateTeam              Operation = "update_team"
	OpDeleteTeam              Operation = "delete_team"
	OpJoinByInviteCode        Operation = "join_by_invite_code"
	OpApplyToJoin             Operation = "apply_to_join"
	OpReviewApplication       Operation = "review_application"
	OpRemoveMember            Operation = "remove_member"
	OpLeaveTeam               Operation = "leave_team"
	OpRegenerateInviteCode    Operation = "regenerate_invite_code"
	OpListMembers             Operation = "list_members"
	OpListPendingApplications Operation = "list_pending_applications"
	OpGetTeam                 Operation = "get_team"
	OpListMyTeams             Operation = "list_my_teams"
	OpTeamMemberUserIDs       Operation = "team_member_user_ids"
)

// subject is everything a rule may inspect. caller and target are nil when
// the corresponding membership does not exist.
type subject struct {
	callerID uuid.UUID
	team     *models.Team
	caller   *models.TeamMembership
	target   *models.TeamMembership
}

type rule struct {
	allow   func(subject) bool
	message string
}

var policy = map[Operation]rule{
	OpCreateTeam:              {allow: anyone},
	OpJoinByInviteCode:        {allow: anyone},
	OpApplyToJoin:             {allow: anyone},
	OpListMyTeams:             {allow: anyone},
	OpTeamMemberUserIDs:       {allow: anyone},
	OpUpdateTeam:              {allow: teamOwner, message: "only the team owner can update the team"},
	OpDeleteTeam:              {allow: teamOwner, message: "only the team owner can delete the team"},
	OpReviewApplication:       {allow: teamOwner, message: "only the team owner can review applications"},
	OpRegenerateInviteCode:    {allow: teamOwner, message: "only the team owner can regenerate the invite code"},
	OpListPendingApplications: {allow: teamOwner, message: "only the team owner can list applications"},
	OpRemoveMember:            {allow: either(teamOwner, targetIsCaller), message: "not allowed to remove this member"},
	OpLeaveTeam:               {allow: approvedMember, message: "only approved members can leave the team"},
	OpListMembers:             {allow: approvedMember, message: "you are not a member of this team"},
	OpGetTeam:                 {allow: approvedMember, message: "you are not a member of this team"},
}

func anyone(subject) bool { return true }

func teamOwner(s subject) bool {
	return s.team.IsOwner(s.callerID)
}

func approvedMember(s subject) bool {
	return s.caller != nil && s.caller.UserID == s.callerID && memberships.IsApproved(s.caller)
}

func targetIsCaller(s subject) bool {
	return s.target != nil && s.target.UserID == s.callerID
}

func either(rules ...func(subject) bool) func(subject) bool {
	return func(s subject) bool {
		for _, allow := range rules {
			if allow(s) {
				return true
			}
		}
		return false
	}
}

// authorize evaluates the rule registered for op.
func authorize(op Operation, s subject) error {
	r, ok := policy[op]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInternal, "no access rule for operation").
			WithDetails(map[string]any{"operation": string(op)})
	}
	if r.allow(s) {
		return nil
	}
	details := map[string]any{"operation": string(op)}
	if s.team != nil {
		details["team_id"] = s.team.ID.String()
	}
	if s.target != nil {
		details["membership_id"] = s.target.ID.String()
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, r.message).WithDetails(details)
}
