package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a memberships repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts m. The (team_id, user_id) unique index turns concurrent
// double submits into ErrDuplicateMembership.
func (r *repository) Create(ctx context.Context, m *models.TeamMembership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		switch {
		case db.IsUniqueViolation(err, ""):
			return ErrDuplicateMembership
		case db.IsForeignKeyViolation(err):
			return ErrTeamGone
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TeamMembership, error) {
	var m models.TeamMembership
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMembership, error) {
	var m models.TeamMembership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.TeamMembership, error) {
	var rows []models.TeamMembership
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByTeamAndStatus(ctx context.Context, teamID uuid.UUID, status enums.MembershipStatus) ([]models.TeamMembership, error) {
	var rows []models.TeamMembership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ?", teamID, status).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]models.TeamMembership, error) {
	var rows []models.TeamMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.MembershipStatusApproved).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Delete removes the membership row. A missing row yields gorm.ErrRecordNotFound.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.TeamMembership{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("team_id = ?", teamID).Delete(&models.TeamMembership{})
	return res.RowsAffected, res.Error
}

func (r *repository) ExistsByTeamAndUser(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CountApprovedByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("team_id = ? AND status = ?", teamID, enums.MembershipStatusApproved).
		Count(&count).Error
	return count, err
}

// CountApprovedByTeams counts approved members per team in one query. Teams
// without approved members are absent from the result.
func (r *repository) CountApprovedByTeams(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		TeamID uuid.UUID
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Select("team_id, COUNT(*) AS total").
		Where("team_id IN ? AND status = ?", teamIDs, enums.MembershipStatusApproved).
		Group("team_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TeamID] = row.Total
	}
	return out, nil
}

// TransitionFromPending moves a pending row to next with a single conditional
// update. Zero affected rows yields ErrNotPending.
func (r *repository) TransitionFromPending(ctx context.Context, id uuid.UUID, next enums.MembershipStatus, joinTime *time.Time, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Where("id = ? AND status = ?", id, enums.MembershipStatusPending).
		Updates(map[string]any{
			"status":     next,
			"join_time":  joinTime,
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *repository) ListApprovedUserIDsByTeams(ctx context.Context, teamIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.TeamMembership{}).
		Distinct("user_id").
		Where("team_id IN ? AND status = ?", teamIDs, enums.MembershipStatusApproved).
		Pluck("user_id", &ids).Error
	return ids, err
}
