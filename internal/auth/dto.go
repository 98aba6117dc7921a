package auth

import (
	"time"

	"github.com/angelmondragon/trailteams-backend/internal/users"
)

// LoginRequest identifies the caller by the open id issued by the mini-program platform.
type LoginRequest struct {
	OpenID   string  `json:"openId" validate:"required,max=128"`
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,max=50"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,max=512"`
}

// LoginResponse contains the access token and the caller profile.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *users.UserDTO `json:"user"`
}
