package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateTeam       OutboxAggregateType = "team"
	AggregateMembership OutboxAggregateType = "membership"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTeam,
	AggregateMembership,
}

func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the routing key for published domain events.
type OutboxEventType string

const (
	EventTeamCreated               OutboxEventType = "team.created"
	EventTeamUpdated               OutboxEventType = "team.updated"
	EventTeamDeleted               OutboxEventType = "team.deleted"
	EventTeamInviteCodeRegenerated OutboxEventType = "team.invite_code_regenerated"
	EventMembershipJoined          OutboxEventType = "membership.joined"
	EventMembershipApplied         OutboxEventType = "membership.applied"
	EventMembershipApproved        OutboxEventType = "membership.approved"
	EventMembershipRejected        OutboxEventType = "membership.rejected"
	EventMembershipRemoved         OutboxEventType = "membership.removed"
	EventMembershipLeft            OutboxEventType = "membership.left"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTeamCreated,
	EventTeamUpdated,
	EventTeamDeleted,
	EventTeamInviteCodeRegenerated,
	EventMembershipJoined,
	EventMembershipApplied,
	EventMembershipApproved,
	EventMembershipRejected,
	EventMembershipRemoved,
	EventMembershipLeft,
}

func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// AggregateFor returns the aggregate type that emits the event.
func (e OutboxEventType) AggregateFor() OutboxAggregateType {
	switch e {
	case EventTeamCreated, EventTeamUpdated, EventTeamDeleted, EventTeamInviteCodeRegenerated:
		return AggregateTeam
	case EventMembershipJoined, EventMembershipApplied, EventMembershipApproved,
		EventMembershipRejected, EventMembershipRemoved, EventMembershipLeft:
		return AggregateMembership
	default:
		return ""
	}
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason records why an event was moved to the dead letter table.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonUnresolvable marks rows whose payload or event type the
	// registry could not decode.
	OutboxDLQReasonUnresolvable OutboxDLQErrorReason = "unresolvable"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonUnresolvable, OutboxDLQReasonNonRetryable, OutboxDLQReasonMaxAttempts:
		return true
	default:
		return false
	}
}
