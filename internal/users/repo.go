package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByOpenID retrieves the user registered for the provided external id.
func (r *Repository) FindByOpenID(ctx context.Context, openID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("open_id = ?", openID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads every user in ids. Unknown ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FirstOrCreateByOpenID inserts a user for openID unless one already exists and
// returns the stored row. Concurrent first logins converge on the same row.
func (r *Repository) FirstOrCreateByOpenID(ctx context.Context, openID, nickname string) (*models.User, error) {
	candidate := models.User{OpenID: openID, Nickname: nickname}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "open_id"}},
			DoNothing: true,
		}).
		Create(&candidate).Error
	if err != nil {
		return nil, err
	}
	return r.FindByOpenID(ctx, openID)
}

// UpdateProfile overwrites the nickname and avatar when provided. Blank
// nicknames are ignored.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, nickname, avatar *string) error {
	updates := map[string]any{}
	if nickname != nil && strings.TrimSpace(*nickname) != "" {
		updates["nickname"] = strings.TrimSpace(*nickname)
	}
	if avatar != nil {
		updates["avatar"] = strings.TrimSpace(*avatar)
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}
