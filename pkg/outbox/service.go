package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

type DomainEvent struct {
	EventType   enums.OutboxEventType
	AggregateID uuid.UUID
	Actor       *ActorRef
	Data        any
	Version     int
	OccurredAt  time.Time
}

type inserter interface {
	Insert(tx *gorm.DB, event models.OutboxEvent) error
}

type Service struct {
	repo inserter
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emit writes event to the outbox inside tx. The aggregate type is derived
// from the event type.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errTxRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	aggregate := event.EventType.AggregateFor()
	if !aggregate.IsValid() {
		return fmt.Errorf("unknown event type %q", event.EventType)
	}
	if event.AggregateID == uuid.Nil {
		return fmt.Errorf("aggregate id required for %s", event.EventType)
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.Version == 0 {
		event.Version = EnvelopeVersion
	}
	if event.Version > EnvelopeVersion {
		return fmt.Errorf("%w: %d", ErrEnvelopeVersion, event.Version)
	}
	envelope := PayloadEnvelope{
		Version:    event.Version,
		EventID:    uuid.NewString(),
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       payload,
	}
	payloadJSON, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	row := models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: aggregate,
		AggregateID:   event.AggregateID,
		Payload:       json.RawMessage(payloadJSON),
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event_id":       envelope.EventID,
			"event_type":     event.EventType,
			"aggregate_id":   event.AggregateID.String(),
			"aggregate_type": aggregate,
		})
		s.logg.Info(logCtx, "outbox event queued")
	}
	return nil
}
