package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

// TeamEvent is published for team lifecycle changes. InviteCode is only set on
// creation and regeneration so consumers can notify the owner.
type TeamEvent struct {
	TeamID      uuid.UUID `json:"teamId"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	InviteCode  string    `json:"inviteCode,omitempty"`
	// MembersRemoved counts the memberships dropped by team deletion.
	MembersRemoved int `json:"membersRemoved,omitempty"`
}

// MembershipEvent is published for every membership lifecycle transition.
type MembershipEvent struct {
	MembershipID uuid.UUID              `json:"membershipId"`
	TeamID       uuid.UUID              `json:"teamId"`
	UserID       uuid.UUID              `json:"userId"`
	ActorID      uuid.UUID              `json:"actorId"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.MembershipStatus `json:"status"`
	JoinTime     *time.Time             `json:"joinTime,omitempty"`
}
