package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

// TeamMembership links a user to a team with a role and approval status.
type TeamMembership struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	TeamID    uuid.UUID              `gorm:"column:team_id;type:uuid;not null;uniqueIndex:ux_team_memberships_team_user"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_team_memberships_team_user"`
	Role      enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status    enums.MembershipStatus `gorm:"column:status;type:text;not null"`
	JoinTime  *time.Time             `gorm:"column:join_time"`
	CreatedAt time.Time              `gorm:"column:created_at"`
	UpdatedAt time.Time              `gorm:"column:updated_at"`
}

func (TeamMembership) TableName() string {
	return "team_memberships"
}

func (m *TeamMembership) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
