package enums

import "fmt"

// MembershipStatus captures the approval lifecycle of a team membership.
type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "PENDING"
	MembershipStatusApproved MembershipStatus = "APPROVED"
	MembershipStatusRejected MembershipStatus = "REJECTED"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusPending,
	MembershipStatusApproved,
	MembershipStatusRejected,
}

// String implements fmt.Stringer.
func (m MembershipStatus) String() string {
	return string(m)
}

// IsValid reports whether the value matches a known MembershipStatus.
func (m MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Approved and rejected memberships only leave their state by deletion.
func (m MembershipStatus) CanTransitionTo(next MembershipStatus) bool {
	switch m {
	case MembershipStatusPending:
		switch next {
		case MembershipStatusApproved, MembershipStatusRejected:
			return true
		case MembershipStatusPending:
			return false
		default:
			return false
		}
	case MembershipStatusApproved, MembershipStatusRejected:
		return false
	default:
		return false
	}
}

// HasJoinTime reports whether memberships in this status carry a join time.
func (m MembershipStatus) HasJoinTime() bool {
	switch m {
	case MembershipStatusApproved:
		return true
	case MembershipStatusPending, MembershipStatusRejected:
		return false
	default:
		return false
	}
}

// ParseMembershipStatus converts raw input into a MembershipStatus.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	for _, candidate := range validMembershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership status %q", value)
}
