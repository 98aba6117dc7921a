package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is written on every new row. Readers accept any version up
// to and including it.
const EnvelopeVersion = 1

var (
	ErrEnvelopeVersion = errors.New("unsupported envelope version")
	ErrEnvelopeEmpty   = errors.New("envelope carries no data")
)

// ActorRef names the user whose request produced the event, and the team they
// acted in when there is one.
type ActorRef struct {
	UserID uuid.UUID  `json:"userId"`
	TeamID *uuid.UUID `json:"teamId,omitempty"`
	Role   string     `json:"role,omitempty"`
}

// PayloadEnvelope wraps the event specific data stored in outbox_events.payload_json.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload and checks the fields every consumer
// relies on.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version < 1 || env.Version > EnvelopeVersion {
		return PayloadEnvelope{}, fmt.Errorf("%w: %d", ErrEnvelopeVersion, env.Version)
	}
	if _, err := uuid.Parse(env.EventID); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("envelope event id: %w", err)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return PayloadEnvelope{}, ErrEnvelopeEmpty
	}
	return env, nil
}
