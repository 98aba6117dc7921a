package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
)

// UserDTO is the public profile returned at login.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createTime"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// IndexByID maps users by id for DTO assembly.
func IndexByID(rows []models.User) map[uuid.UUID]models.User {
	out := make(map[uuid.UUID]models.User, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out
}
