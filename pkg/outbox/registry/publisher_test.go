package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
	"github.com/angelmondragon/trailteams-backend/pkg/enums"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

func TestEventRegistryResolveMembershipEvent(t *testing.T) {
	reg := newTestEventRegistry(t)

	membershipID := uuid.New()
	payloadBytes := mustMarshal(t, payloads.MembershipEvent{
		MembershipID: membershipID,
		TeamID:       uuid.New(),
		UserID:       uuid.New(),
		Role:         enums.MemberRoleMember,
		Status:       enums.MembershipStatusApproved,
	})

	event := models.OutboxEvent{
		EventType:     enums.EventMembershipApproved,
		AggregateType: enums.AggregateMembership,
		AggregateID:   membershipID,
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "team-events" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.MembershipEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.MembershipID != membershipID || payload.Status != enums.MembershipStatusApproved {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" || resolved.Envelope.OccurredAt.IsZero() {
		t.Fatalf("envelope metadata missing: %+v", resolved.Envelope)
	}
}

func TestEventRegistryResolveTeamEvent(t *testing.T) {
	reg := newTestEventRegistry(t)
	teamID := uuid.New()

	event := models.OutboxEvent{
		EventType:     enums.EventTeamCreated,
		AggregateType: enums.AggregateTeam,
		AggregateID:   teamID,
		Payload:       mustEnvelope(t, mustMarshal(t, payloads.TeamEvent{TeamID: teamID, Name: "Ridge Crew", InviteCode: "AB12CD34"})),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload, ok := resolved.Payload.(*payloads.TeamEvent)
	if !ok || payload.Name != "Ridge Crew" {
		t.Fatalf("unexpected payload %+v", resolved.Payload)
	}
}

func TestEventRegistryRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("team.exploded"),
			AggregateType: enums.AggregateTeam,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventTeamCreated,
			AggregateType: enums.AggregateMembership,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventTeamCreated,
			AggregateType: enums.AggregateTeam,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventMembershipLeft,
			AggregateType: enums.AggregateMembership,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"future envelope version": {
			EventType:     enums.EventMembershipLeft,
			AggregateType: enums.AggregateMembership,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"version":9,"eventId":"` + uuid.NewString() + `","data":{}}`),
		},
		"broken envelope": {
			EventType:     enums.EventMembershipLeft,
			AggregateType: enums.AggregateMembership,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"data":`),
		},
	}

	for name, event := range cases {
		_, err := reg.Resolve(event)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		var nonRetry NonRetryableError
		if !errors.As(err, &nonRetry) {
			t.Fatalf("%s: expected non-retryable error, got %T", name, err)
		}
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected missing topic to fail")
	}
	reg := newTestEventRegistry(t)
	if topics := reg.Topics(); len(topics) != 1 || topics[0] != "team-events" {
		t.Fatalf("unexpected topics %v", topics)
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{TeamEventsTopic: "team-events"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
