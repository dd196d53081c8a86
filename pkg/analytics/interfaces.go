package analytics

import (
	"context"
	"time"
)

// Event is a single telemetry record as posted to the collector.
type Event struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Path       string         `json:"path,omitempty"`
	Referrer   string         `json:"referrer,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
}

// Client delivers batches of events to an analytics backend.
type Client interface {
	Send(ctx context.Context, events []Event) error
}
