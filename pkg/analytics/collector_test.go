package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

func TestCollectorDeliversEventsWithRequestInfo(t *testing.T) {
	client := NewMockClient(nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	collector, err := NewCollector(CollectorConfig{Client: client, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	ctx := eclipse.ContextWithRequest(context.Background(), eclipse.RequestInfo{Path: "/s/abc", SessionID: "abc"})
	payload := map[string]any{"from": "revenue"}
	collector.Record(ctx, eclipse.EventBackToOverview, payload)
	payload["from"] = "mutated"
	require.NoError(t, collector.Close(context.Background()))

	events := client.Events()
	require.Len(t, events, 1)
	assert.Equal(t, eclipse.EventBackToOverview, events[0].Name)
	assert.Equal(t, "revenue", events[0].Properties["from"])
	assert.Equal(t, "abc", events[0].SessionID)
	assert.Equal(t, "/s/abc", events[0].Path)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestCollectorPageViewsRequireInject(t *testing.T) {
	client := NewMockClient(nil)
	collector, err := NewCollector(CollectorConfig{Client: client})
	require.NoError(t, err)

	collector.Record(context.Background(), eclipse.EventPageView, nil)
	collector.Inject(context.Background())
	collector.Record(context.Background(), eclipse.EventPageView, map[string]any{"page": "landing"})
	require.NoError(t, collector.Close(context.Background()))

	events := client.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "landing", events[0].Properties["page"])
}

func TestCollectorSwallowsDeliveryErrors(t *testing.T) {
	client := NewMockClient(errors.New("offline"))
	collector, err := NewCollector(CollectorConfig{Client: client})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		collector.Record(context.Background(), eclipse.EventChatOpened, nil)
	})
	require.NoError(t, collector.Close(context.Background()))
	assert.Len(t, client.Events(), 1)
}

func TestCollectorIgnoresEventsAfterClose(t *testing.T) {
	client := NewMockClient(nil)
	collector, err := NewCollector(CollectorConfig{Client: client})
	require.NoError(t, err)
	require.NoError(t, collector.Close(context.Background()))
	require.NoError(t, collector.Close(context.Background()))

	collector.Record(context.Background(), eclipse.EventChatOpened, nil)
	assert.Empty(t, client.Events())
}

func TestCollectorDropsWhenBufferFull(t *testing.T) {
	release := make(chan struct{})
	client := &blockingClient{release: release, started: make(chan struct{}, 1)}
	collector, err := NewCollector(CollectorConfig{Client: client, BufferSize: 1})
	require.NoError(t, err)

	collector.Record(context.Background(), "first", nil)
	<-client.started
	collector.Record(context.Background(), "second", nil)
	collector.Record(context.Background(), "third", nil)
	assert.Equal(t, int64(1), collector.Dropped())

	close(release)
	require.NoError(t, collector.Close(context.Background()))
}

func TestNewCollectorRequiresClient(t *testing.T) {
	_, err := NewCollector(CollectorConfig{})
	assert.ErrorIs(t, err, errMissingClient)
}

func TestCollectorWorksAsServiceTelemetry(t *testing.T) {
	client := NewMockClient(nil)
	collector, err := NewCollector(CollectorConfig{Client: client})
	require.NoError(t, err)
	service := eclipse.NewService(eclipse.Options{Telemetry: collector})

	snapshot, err := service.StartSession(context.Background())
	require.NoError(t, err)
	_, err = service.SubmitEmail(context.Background(), snapshot.ID, "jane@spa.com")
	require.NoError(t, err)
	require.NoError(t, collector.Close(context.Background()))

	events := client.Events()
	require.Len(t, events, 1)
	assert.Equal(t, eclipse.EventEmailCollected, events[0].Name)
	assert.Equal(t, "jane@spa.com", events[0].Properties["email"])
}

// --- Test helpers ---

type blockingClient struct {
	release <-chan struct{}
	started chan struct{}
}

func (c *blockingClient) Send(context.Context, []Event) error {
	select {
	case c.started <- struct{}{}:
	default:
	}
	<-c.release
	return nil
}
