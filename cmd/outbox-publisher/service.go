package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox/registry"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// publishGuard remembers envelope ids already handed to pubsub so a row that
// was published but not marked (crash between publish and commit) is not sent twice.
type publishGuard interface {
	Claim(ctx context.Context, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, eventID uuid.UUID) error
}

type publishRecorder interface {
	IncPublished(eventType string)
	IncFailed(eventType string)
	IncDeadLettered(reason string)
	ObserveBatch(elapsed time.Duration)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Guard            publishGuard
	Metrics          publishRecorder
}

type Service struct {
	cfg              *config.Config
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	dlq              dlqRepository
	guard            publishGuard
	metrics          publishRecorder
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"config", params.Config == nil},
		{"logger", params.Logger == nil},
		{"database client", params.DB == nil},
		{"pubsub client", params.PubSub == nil},
		{"outbox repository", params.Repository == nil},
		{"event registry", params.Registry == nil},
		{"dlq repository", params.DLQRepository == nil},
	}
	for _, dep := range required {
		if dep.missing {
			return nil, fmt.Errorf("outbox publisher: %s is required", dep.name)
		}
	}

	svc := &Service{
		cfg:              params.Config,
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		dlq:              params.DLQRepository,
		guard:            params.Guard,
		metrics:          metricsOrNoop(params.Metrics),
		publisherFactory: params.PublisherFactory,
		batchSize:        positiveOr(params.Config.Outbox.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(params.Config.Outbox.MaxAttempts, defaultMaxAttempts),
		pollInterval:     time.Duration(positiveOr(params.Config.Outbox.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}
	if svc.publisherFactory == nil {
		svc.publisherFactory = svc.topicPublisher
	}
	return svc, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func (s *Service) topicPublisher(topic string) publisher {
	return newGCPPubPublisher(s.pubsub.Publisher(topic))
}

func (s *Service) checkDependencies(ctx context.Context) error {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", s.db.Ping},
		{"pubsub", s.pubsub.Ping},
	}
	for _, c := range checks {
		if err := c.ping(ctx); err != nil {
			s.logg.Error(ctx, c.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", c.name, err)
		}
	}
	return nil
}

// Run drains the outbox until ctx is canceled. Empty polls wait one interval;
// failing batches back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.checkDependencies(ctx); err != nil {
		return err
	}

	delay := pollDelay{base: s.pollInterval, max: maxBackoff}
	for ctx.Err() == nil {
		busy, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			wait = delay.fail()
		case busy:
			delay.reset()
			continue
		default:
			wait = delay.reset()
		}
		if err := pause(ctx, wait); err != nil {
			break
		}
	}
	s.logg.Info(ctx, "outbox publisher context canceled")
	return ctx.Err()
}

// processBatch drains one page of pending rows inside a single transaction and
// reports whether any row was handled.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBatch(time.Since(start)) }()

	handled := 0
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, event := range events {
			if err := s.dispatch(ctx, tx, event); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	return handled > 0, err
}

// dispatch publishes one row and records the outcome. Only bookkeeping failures
// are returned; publish failures are folded into the row state.
func (s *Service) dispatch(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		fields := s.eventFields(event, outbox.PayloadEnvelope{}, "")
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonUnresolvable, err, fields)
	}

	fields := s.eventFields(event, resolved.Envelope, resolved.Descriptor.Topic)
	pubErr := s.publishResolved(ctx, event, resolved)
	if pubErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType))
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(pubErr, &nonRetry) {
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, pubErr, fields)
	}

	attempt := event.AttemptCount + 1
	fields["attempt_count"] = attempt
	if attempt >= s.maxAttempts {
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", attempt, pubErr), fields)
	}

	s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, fields), "error", pubErr.Error()), "outbox publish failed, will retry")
	s.metrics.IncFailed(string(event.EventType))
	if err := s.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return nil
}

// deadLetter copies the row into outbox_dlq and stops further attempts.
func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, fields map[string]any) error {
	fields["error_reason"] = reason
	logCtx := s.logg.WithField(s.logg.WithFields(ctx, fields), "error", cause.Error())
	s.logg.Warn(logCtx, "outbox event dead-lettered")

	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  dlqErrorMessage(cause),
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	s.metrics.IncDeadLettered(string(reason))
	return nil
}

func dlqErrorMessage(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	eventID, guarded := s.guardKey(resolved.Envelope.EventID)
	if guarded {
		first, err := s.guard.Claim(ctx, eventID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "outbox publish guard unavailable")
			guarded = false
		} else if !first {
			s.logg.Info(s.logg.WithField(ctx, "event_id", eventID.String()), "outbox event already published")
			return nil
		}
	}

	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		s.forget(ctx, eventID, guarded)
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	if _, err := result.Get(publishCtx); err != nil {
		s.forget(ctx, eventID, guarded)
		return err
	}
	return nil
}

func (s *Service) guardKey(envelopeID string) (uuid.UUID, bool) {
	if s.guard == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(envelopeID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// forget releases the guard so the next attempt may publish again.
func (s *Service) forget(ctx context.Context, eventID uuid.UUID, guarded bool) {
	if !guarded {
		return
	}
	if err := s.guard.Release(ctx, eventID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "outbox publish guard release failed")
	}
}

func (s *Service) eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

// pollDelay tracks the wait between polls. Every returned delay carries up to
// jitterWindow of random spread.
type pollDelay struct {
	base, max, current time.Duration
}

func (d *pollDelay) reset() time.Duration {
	d.current = 0
	return jitter(d.base)
}

func (d *pollDelay) fail() time.Duration {
	if d.current <= 0 {
		d.current = d.base
	}
	d.current *= 2
	if d.current > d.max {
		d.current = d.max
	}
	return jitter(d.current)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newGCPPubPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}

type noopRecorder struct{}

func (noopRecorder) IncPublished(string) {}
func (noopRecorder) IncFailed(string) {}
func (noopRecorder) IncDeadLettered(string) {}
func (noopRecorder) ObserveBatch(time.Duration) {}

func metricsOrNoop(m publishRecorder) publishRecorder {
	if m == nil {
		return noopRecorder{}
	}
	return m
}
