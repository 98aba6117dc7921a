package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

type deadLetterAdmin interface {
	CountByReason(ctx context.Context) (map[enums.OutboxDLQErrorReason]int64, error)
	RequeueTx(tx *gorm.DB, eventID uuid.UUID) error
}

// parseEventIDs splits a comma separated -requeue value.
func parseEventIDs(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// requeueDeadLetters moves each event back into the publish queue. Every id is
// attempted in its own transaction; failures are combined.
func requeueDeadLetters(ctx context.Context, db dbClient, admin deadLetterAdmin, logg *logger.Logger, ids []uuid.UUID) error {
	var errs error
	for _, id := range ids {
		err := db.WithTx(ctx, func(tx *gorm.DB) error {
			return admin.RequeueTx(tx, id)
		})
		fieldCtx := logg.WithField(ctx, "event_id", id.String())
		if err != nil {
			logg.Warn(logg.WithField(fieldCtx, "error", err.Error()), "dead letter requeue failed")
			errs = multierr.Append(errs, err)
			continue
		}
		logg.Info(fieldCtx, "dead letter requeued")
	}
	return errs
}

// logBacklog reports how many events sit in the dead letter table.
func logBacklog(ctx context.Context, admin deadLetterAdmin, logg *logger.Logger) {
	counts, err := admin.CountByReason(ctx)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "dead letter backlog unavailable")
		return
	}
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	fields := make(map[string]any, len(counts))
	for reason, total := range counts {
		reasons = append(reasons, string(reason))
		fields["dlq_"+string(reason)] = total
	}
	sort.Strings(reasons)
	fields["dlq_reasons"] = strings.Join(reasons, ",")
	logg.Warn(logg.WithFields(ctx, fields), "dead letter backlog present")
}
