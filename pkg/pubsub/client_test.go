package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
)

func TestResourceNames(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"short topic", topicResourceName("proj", "tt-team-events"), "projects/proj/topics/tt-team-events"},
		{"full topic", topicResourceName("other", "projects/proj/topics/x"), "projects/proj/topics/x"},
		{"short subscription", subscriptionResourceName("proj", " sub "), "projects/proj/subscriptions/sub"},
		{"topic passed as subscription", subscriptionResourceName("proj", "projects/proj/topics/x"), "projects/proj/subscriptions/projects/proj/topics/x"},
		{"blank", topicResourceName("proj", " "), ""},
		{"missing project", topicResourceName("", "x"), ""},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.want, tc.got)
		}
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{TeamEventsTopic: "t"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil); err != errTopicRequired {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("x") != nil || c.TeamEventsPublisher() != nil {
		t.Fatal("nil client should not return publishers")
	}
	if err := c.Ping(context.Background()); err != errNotInitialized {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
}
