package teams

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a teams repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts team inside a savepoint so an invite code collision leaves
// an enclosing transaction usable for the retry.
func (r *repository) Create(ctx context.Context, team *models.Team) error {
	err := r.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return inner.Create(team).Error
	})
	return translateWriteError(err)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByIDs returns the teams in ids ordered by creation time.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Team
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Update writes the mutable columns of team. Like Create it runs in a
// savepoint because invite code regeneration can collide.
func (r *repository) Update(ctx context.Context, team *models.Team) error {
	err := r.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		res := inner.Model(&models.Team{}).
			Where("id = ?", team.ID).
			Updates(map[string]any{
				"name":        team.Name,
				"description": team.Description,
				"invite_code": team.InviteCode,
				"updated_at":  team.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translateWriteError(err)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Team{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("invite_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func translateWriteError(err error) error {
	if err != nil && db.IsUniqueViolation(err, "") {
		return ErrInviteCodeTaken
	}
	return err
}
