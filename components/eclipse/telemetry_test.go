package eclipse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogTelemetryWritesSnakeCaseKeys(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewLogTelemetry(zap.New(core))

	sink.Record(context.Background(), EventMetricCardClicked, map[string]any{"metricId": "online-sales"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "telemetry", entries[0].Message)
	assert.Equal(t, EventMetricCardClicked, fields["event"])
	assert.Equal(t, "metric_card_clicked", fields["event_key"])
	assert.Equal(t, "online-sales", fields["metric_id"])
}

func TestMultiTelemetryIsolatesFailingSinks(t *testing.T) {
	recorder := &recordingTelemetry{}
	sink := MultiTelemetry{panickingTelemetry{}, nil, recorder}

	sink.Record(context.Background(), EventChatOpened, nil)
	assert.Equal(t, []string{EventChatOpened}, recorder.names())
}

func TestMultiTelemetryInjectsSupportingSinks(t *testing.T) {
	injecting := &injectingTelemetry{}
	sink := MultiTelemetry{&recordingTelemetry{}, injecting}
	sink.Inject(context.Background())
	assert.Equal(t, 1, injecting.injected)
}

func TestSafeTelemetryRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	safe := safeTelemetry{next: panickingTelemetry{}, logger: zap.New(core)}
	assert.NotPanics(t, func() {
		safe.Record(context.Background(), EventChatClosed, nil)
	})
	assert.Equal(t, 1, logs.Len())
}

func TestNormalizeTelemetryDefaultsToNoop(t *testing.T) {
	assert.IsType(t, noopTelemetry{}, normalizeTelemetry(nil))
}
