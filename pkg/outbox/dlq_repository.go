package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
)

const (
	maxDLQErrorLen  = 1024
	defaultDLQLimit = 50
	maxDLQListLimit = 500
)

// ErrNotDeadLettered is returned by RequeueTx when the event has no DLQ row.
var ErrNotDeadLettered = errors.New("outbox event is not dead-lettered")

// DLQFilter narrows List. Zero values match everything.
type DLQFilter struct {
	Reason    enums.OutboxDLQErrorReason
	EventType enums.OutboxEventType
	Limit     int
}

// DLQRepository stores events the publisher stopped retrying.
type DLQRepository struct {
	db *gorm.DB
}

func NewDLQRepository(db *gorm.DB) *DLQRepository {
	return &DLQRepository{db: db}
}

func (r *DLQRepository) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errTxRequired
	}
	if entry.ErrorMessage != nil {
		clipped := truncateDLQError(*entry.ErrorMessage)
		entry.ErrorMessage = &clipped
	}
	return tx.Create(&entry).Error
}

// FindByEventID returns (nil, nil) for events that never dead-lettered.
func (r *DLQRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	var row models.OutboxDLQ
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &row, nil
}

// List returns the newest failures first.
func (r *DLQRepository) List(ctx context.Context, filter DLQFilter) ([]models.OutboxDLQ, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultDLQLimit
	}
	if limit > maxDLQListLimit {
		limit = maxDLQListLimit
	}
	query := r.db.WithContext(ctx).Model(&models.OutboxDLQ{})
	if filter.Reason != "" {
		query = query.Where("error_reason = ?", filter.Reason)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	var rows []models.OutboxDLQ
	err := query.Order("failed_at DESC").Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

// CountByReason summarises the dead letter backlog.
func (r *DLQRepository) CountByReason(ctx context.Context) (map[enums.OutboxDLQErrorReason]int64, error) {
	var rows []struct {
		Reason enums.OutboxDLQErrorReason `gorm:"column:error_reason"`
		Total  int64                      `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.OutboxDLQ{}).
		Select("error_reason, COUNT(*) AS total").
		Group("error_reason").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OutboxDLQErrorReason]int64, len(rows))
	for _, row := range rows {
		counts[row.Reason] = row.Total
	}
	return counts, nil
}

// RequeueTx drops the DLQ row and resets the outbox row so the publisher
// picks it up on its next poll.
func (r *DLQRepository) RequeueTx(tx *gorm.DB, eventID uuid.UUID) error {
	if tx == nil {
		return errTxRequired
	}
	res := tx.Where("event_id = ?", eventID).Delete(&models.OutboxDLQ{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotDeadLettered, eventID)
	}
	return tx.Model(&models.OutboxEvent{}).
		Where("id = ? AND published_at IS NULL", eventID).
		Updates(map[string]any{
			"attempt_count": 0,
			"last_error":    nil,
		}).Error
}

func truncateDLQError(message string) string {
	if len(message) <= maxDLQErrorLen {
		return message
	}
	return message[:maxDLQErrorLen]
}
