package teams

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

// CreateTeamInput carries the fields accepted when creating a team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// UpdateTeamInput patches team metadata; nil fields are left untouched.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// TeamDTO is the team view returned to callers. InviteCode is only populated
// for the owner.
type TeamDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InviteCode  string    `json:"inviteCode,omitempty"`
	OwnerID     uuid.UUID `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
	MemberCount int64     `json:"memberCount"`
	CreatedAt   time.Time `json:"createTime"`
	UpdatedAt   time.Time `json:"updateTime"`
}

// MemberDTO is a membership joined with the member's public profile.
type MemberDTO struct {
	ID       uuid.UUID              `json:"id"`
	TeamID   uuid.UUID              `json:"teamId"`
	UserID   uuid.UUID              `json:"userId"`
	Nickname string                 `json:"nickname"`
	Avatar   *string                `json:"avatar,omitempty"`
	Role     enums.MemberRole       `json:"role"`
	Status   enums.MembershipStatus `json:"status"`
	JoinTime *time.Time             `json:"joinTime,omitempty"`
}

func toTeamDTO(team *models.Team, owner *models.User, memberCount int64, viewerID uuid.UUID) TeamDTO {
	dto := TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		MemberCount: memberCount,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
	if owner != nil {
		dto.OwnerName = owner.Nickname
	}
	if team.IsOwner(viewerID) {
		dto.InviteCode = team.InviteCode
	}
	return dto
}

func toMemberDTO(m *models.TeamMembership, user *models.User) MemberDTO {
	dto := MemberDTO{
		ID:       m.ID,
		TeamID:   m.TeamID,
		UserID:   m.UserID,
		Role:     m.Role,
		Status:   m.Status,
		JoinTime: m.JoinTime,
	}
	if user != nil {
		dto.Nickname = user.Nickname
		dto.Avatar = user.Avatar
	}
	return dto
}
