package eclipse

import (
	"context"
	"fmt"

	"github.com/ettle/strcase"
	"go.uber.org/zap"
)

// Telemetry events reported by the dashboard. Names match the analytics
// dashboards they feed, so they are not normalised.
const (
	EventEmailCollected       = "email_collected"
	EventChatOpened           = "Chat Opened"
	EventChatClosed           = "Chat Closed"
	EventChatMessageSent      = "Chat Message Sent"
	EventChatResponseReceived = "Chat Response Received"
	EventMetricCardClicked    = "Metric Card Clicked"
	EventBusinessModelOpened  = "Navigation - Business Model Opened"
	EventBackToOverview       = "Navigation - Back to Overview"
	EventPageView             = "pageview"
)

// Telemetry records dashboard events. Implementations must not block.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Injector activates passive page-view collection on a telemetry sink.
type Injector interface {
	Inject(ctx context.Context)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// safeTelemetry swallows panics so reporting never alters control flow.
type safeTelemetry struct {
	next   Telemetry
	logger *zap.Logger
}

func (t safeTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Debug("telemetry record failed",
				zap.String("event", event),
				zap.String("error", fmt.Sprint(r)),
			)
		}
	}()
	t.next.Record(ctx, event, payload)
}

// LogTelemetry writes events to a zap logger.
type LogTelemetry struct {
	Logger *zap.Logger
}

// NewLogTelemetry builds a log sink; a nil logger discards events.
func NewLogTelemetry(logger *zap.Logger) *LogTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTelemetry{Logger: logger}
}

// Record logs the event with its properties.
func (t *LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload)+2)
	fields = append(fields, zap.String("event", event), zap.String("event_key", strcase.ToSnake(event)))
	for key, value := range payload {
		fields = append(fields, zap.Any(strcase.ToSnake(key), value))
	}
	t.Logger.Info("telemetry", fields...)
}

// MultiTelemetry fans events out to every sink.
type MultiTelemetry []Telemetry

// Record forwards the event to each sink, isolating failures per sink.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		safeTelemetry{next: sink, logger: zap.NewNop()}.Record(ctx, event, payload)
	}
}

// Inject activates page-view collection on every sink that supports it.
func (m MultiTelemetry) Inject(ctx context.Context) {
	for _, sink := range m {
		if injector, ok := sink.(Injector); ok {
			injector.Inject(ctx)
		}
	}
}
