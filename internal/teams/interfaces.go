package teams

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
)

// ErrInviteCodeTaken is returned when a write collides on ux_teams_invite_code.
var ErrInviteCodeTaken = errors.New("invite code already in use")

// Repository defines persistence operations for the teams table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Team, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}
