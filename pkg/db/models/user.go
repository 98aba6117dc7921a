package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the internal identity behind an external open id.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OpenID    string    `gorm:"column:open_id;type:text;not null;uniqueIndex:ux_users_open_id"`
	Nickname  string    `gorm:"column:nickname;not null"`
	Avatar    *string   `gorm:"column:avatar"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
