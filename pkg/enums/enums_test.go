package enums

import "testing"

func TestMembershipStatusTransitions(t *testing.T) {
	cases := []struct {
		from MembershipStatus
		to   MembershipStatus
		ok   bool
	}{
		{MembershipStatusPending, MembershipStatusApproved, true},
		{MembershipStatusPending, MembershipStatusRejected, true},
		{MembershipStatusPending, MembershipStatusPending, false},
		{MembershipStatusApproved, MembershipStatusRejected, false},
		{MembershipStatusApproved, MembershipStatusPending, false},
		{MembershipStatusRejected, MembershipStatusApproved, false},
		{MembershipStatus("BANNED"), MembershipStatusApproved, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestMembershipStatusJoinTime(t *testing.T) {
	if !MembershipStatusApproved.HasJoinTime() {
		t.Fatalf("approved memberships carry a join time")
	}
	if MembershipStatusPending.HasJoinTime() || MembershipStatusRejected.HasJoinTime() {
		t.Fatalf("only approved memberships carry a join time")
	}
}

func TestMemberRoleRemovable(t *testing.T) {
	if MemberRoleOwner.Removable() {
		t.Fatalf("owner must not be removable")
	}
	if !MemberRoleMember.Removable() || !MemberRoleAdmin.Removable() {
		t.Fatalf("members and admins are removable")
	}
}

func TestParseEnums(t *testing.T) {
	if role, err := ParseMemberRole("ADMIN"); err != nil || role != MemberRoleAdmin {
		t.Fatalf("unexpected parse result %q %v", role, err)
	}
	if _, err := ParseMemberRole("owner"); err == nil {
		t.Fatalf("expected lowercase role to be rejected")
	}
	if _, err := ParseMembershipStatus("PENDING"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOutboxEventType("team.exploded"); err == nil {
		t.Fatalf("expected unknown event type to fail")
	}
}

func TestEventAggregate(t *testing.T) {
	if EventTeamDeleted.AggregateFor() != AggregateTeam {
		t.Fatalf("team events belong to the team aggregate")
	}
	if EventMembershipLeft.AggregateFor() != AggregateMembership {
		t.Fatalf("membership events belong to the membership aggregate")
	}
	for _, evt := range validOutboxEventTypes {
		if !evt.AggregateFor().IsValid() {
			t.Fatalf("event %s has no aggregate", evt)
		}
	}
}

func TestDLQReasons(t *testing.T) {
	for _, reason := range []OutboxDLQErrorReason{
		OutboxDLQReasonUnresolvable,
		OutboxDLQReasonNonRetryable,
		OutboxDLQReasonMaxAttempts,
	} {
		if !reason.IsValid() {
			t.Fatalf("expected %q to be valid", reason)
		}
	}
	if OutboxDLQErrorReason("timeout").IsValid() {
		t.Fatalf("unknown reason must be invalid")
	}
}
