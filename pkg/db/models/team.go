package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team is the aggregate root for a hiking group.
type Team struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	InviteCode  string    `gorm:"column:invite_code;not null;uniqueIndex:ux_teams_invite_code"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (t *Team) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOwner reports whether userID created the team.
func (t *Team) IsOwner(userID uuid.UUID) bool {
	return t != nil && t.OwnerID == userID
}
