package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/trailteams-backend/pkg/errors"
)

// NewOwner builds the approved owner membership created alongside a team.
func NewOwner(teamID, userID uuid.UUID, now time.Time) *models.TeamMembership {
	return newMembership(teamID, userID, enums.MemberRoleOwner, enums.MembershipStatusApproved, now)
}

// NewInvited builds the membership for a user presenting a valid invite code.
// Invite codes skip review.
func NewInvited(teamID, userID uuid.UUID, now time.Time) *models.TeamMembership {
	return newMembership(teamID, userID, enums.MemberRoleMember, enums.MembershipStatusApproved, now)
}

// NewApplicant builds a pending membership awaiting owner review.
func NewApplicant(teamID, userID uuid.UUID, now time.Time) *models.TeamMembership {
	return newMembership(teamID, userID, enums.MemberRoleMember, enums.MembershipStatusPending, now)
}

func newMembership(teamID, userID uuid.UUID, role enums.MemberRole, status enums.MembershipStatus, now time.Time) *models.TeamMembership {
	now = now.UTC()
	m := &models.TeamMembership{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status.HasJoinTime() {
		joined := now
		m.JoinTime = &joined
	}
	return m
}

// Approve moves a pending membership to approved and stamps the join time.
func Approve(m *models.TeamMembership, now time.Time) error {
	return transition(m, enums.MembershipStatusApproved, now)
}

// Reject moves a pending membership to rejected. The join time stays unset.
func Reject(m *models.TeamMembership, now time.Time) error {
	return transition(m, enums.MembershipStatusRejected, now)
}

func transition(m *models.TeamMembership, next enums.MembershipStatus, now time.Time) error {
	if m == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	if !m.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "membership is not pending").
			WithDetails(map[string]any{
				"membership_id": m.ID.String(),
				"team_id":       m.TeamID.String(),
				"status":        m.Status,
			})
	}
	now = now.UTC()
	m.Status = next
	m.UpdatedAt = now
	if next.HasJoinTime() {
		joined := now
		m.JoinTime = &joined
	} else {
		m.JoinTime = nil
	}
	return nil
}

// EnsureRemovable rejects deletion of memberships whose role must survive
// while the team exists.
func EnsureRemovable(m *models.TeamMembership) error {
	if m.Role.Removable() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "team owner cannot be removed").
		WithDetails(map[string]any{
			"membership_id": m.ID.String(),
			"team_id":       m.TeamID.String(),
		})
}

// IsApproved reports whether m grants member visibility.
func IsApproved(m *models.TeamMembership) bool {
	return m != nil && m.Status == enums.MembershipStatusApproved
}
