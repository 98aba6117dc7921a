package memberships

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

var (
	// ErrDuplicateMembership is returned when (team, user) already has a row.
	ErrDuplicateMembership = errors.New("membership already exists")
	// ErrTeamGone is returned when the team row vanished before the insert.
	ErrTeamGone = errors.New("team no longer exists")
	// ErrNotPending is returned when a conditional transition matched no pending row.
	ErrNotPending = errors.New("membership is not pending")
)

// Repository defines persistence operations for team_memberships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, m *models.TeamMembership) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.TeamMembership, error)
	FindByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMembership, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamMembership, error)
	ListByTeamAndStatus(ctx context.Context, teamID uuid.UUID, status enums.MembershipStatus) ([]models.TeamMembership, error)
	ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]models.TeamMembership, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	ExistsByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	CountApprovedByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
	CountApprovedByTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	TransitionFromPending(ctx context.Context, id uuid.UUID, next enums.MembershipStatus, joinTime *time.Time, at time.Time) error
	ListApprovedUserIDsByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]uuid.UUID, error)
}
