package analytics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

const (
	defaultBufferSize  = 256
	defaultSendTimeout = 10 * time.Second
)

var errMissingClient = errors.New("analytics: client is required")

// CollectorConfig configures the asynchronous telemetry sink.
type CollectorConfig struct {
	Client      Client
	Logger      *zap.Logger
	BufferSize  int
	SendTimeout time.Duration
	Now         func() time.Time
}

// Collector is an eclipse.Telemetry sink that posts events in the background.
// Record never blocks: events are dropped when the buffer is full.
type Collector struct {
	client  Client
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}

	pageViews atomic.Bool
	dropped   atomic.Int64
}

var (
	_ eclipse.Telemetry = (*Collector)(nil)
	_ eclipse.Injector  = (*Collector)(nil)
)

// NewCollector starts the delivery worker.
func NewCollector(cfg CollectorConfig) (*Collector, error) {
	if cfg.Client == nil {
		return nil, errMissingClient
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Collector{
		client:  cfg.Client,
		logger:  cfg.Logger,
		timeout: cfg.SendTimeout,
		now:     cfg.Now,
		events:  make(chan Event, cfg.BufferSize),
		done:    make(chan struct{}),
	}
	go c.run()
	return c, nil
}

// Inject enables page-view events. Page views recorded before Inject are dropped.
func (c *Collector) Inject(context.Context) {
	c.pageViews.Store(true)
}

// Record queues the event for delivery.
func (c *Collector) Record(ctx context.Context, event string, payload map[string]any) {
	if event == eclipse.EventPageView && !c.pageViews.Load() {
		return
	}
	info := eclipse.RequestFromContext(ctx)
	ev := Event{
		Name:       event,
		Properties: copyProperties(payload),
		Timestamp:  c.now().UTC(),
		Path:       info.Path,
		Referrer:   info.Referrer,
		UserAgent:  info.UserAgent,
		SessionID:  info.SessionID,
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
		c.logger.Debug("analytics buffer full, dropping event", zap.String("event", event))
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered.
func (c *Collector) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collector) run() {
	defer close(c.done)
	for ev := range c.events {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		if err := c.client.Send(ctx, []Event{ev}); err != nil {
			c.logger.Debug("analytics delivery failed", zap.String("event", ev.Name), zap.Error(err))
		}
		cancel()
	}
}

func copyProperties(payload map[string]any) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
