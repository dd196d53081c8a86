package analytics

import (
	"context"
	"sync"
)

// MockClient implements Client in memory for tests or local demos.
type MockClient struct {
	mu     sync.RWMutex
	events []Event
	err    error
}

// NewMockClient builds a mock analytics client. A non-nil err is returned
// from every Send after the events are recorded.
func NewMockClient(err error) *MockClient {
	return &MockClient{err: err}
}

// Send records the events.
func (c *MockClient) Send(_ context.Context, events []Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
	return c.err
}

// Events returns a copy of every event received so far.
func (c *MockClient) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Event(nil), c.events...)
}
