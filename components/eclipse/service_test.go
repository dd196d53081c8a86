package eclipse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceStartSessionUsesIDGenerator(t *testing.T) {
	store := NewInMemorySessionStore()
	service := NewService(Options{Store: store, NewID: sequentialIDs("s")})

	first, err := service.StartSession(context.Background())
	require.NoError(t, err)
	second, err := service.StartSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "s-1", first.ID)
	assert.Equal(t, "s-2", second.ID)
	assert.Equal(t, PageLanding, first.Page)
	assert.Equal(t, 2, store.Len())
}

func TestServiceUnknownSession(t *testing.T) {
	service := NewService(Options{})
	if _, err := service.Snapshot(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := service.Snapshot(context.Background(), ""); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

func TestServiceSubmitEmail(t *testing.T) {
	service := NewService(Options{})
	ctx := context.Background()
	started, err := service.StartSession(ctx)
	require.NoError(t, err)

	snapshot, err := service.SubmitEmail(ctx, started.ID, "a@b")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, PageLanding, snapshot.Page)
	require.NotNil(t, snapshot.Gate.EmailValid)
	assert.False(t, *snapshot.Gate.EmailValid)

	snapshot, err = service.SubmitEmail(ctx, started.ID, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, PageDashboard, snapshot.Page)
	assert.Equal(t, "a@b.co", snapshot.UserEmail)

	snapshot, err = service.SubmitEmail(ctx, started.ID, "other@b.co")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", snapshot.UserEmail)
}

func TestServiceInputEmail(t *testing.T) {
	service := NewService(Options{})
	ctx := context.Background()
	started, _ := service.StartSession(ctx)

	state, err := service.InputEmail(ctx, started.ID, "a@b.co")
	require.NoError(t, err)
	assert.True(t, state.CanSubmit)
	require.NotNil(t, state.EmailValid)
	assert.True(t, *state.EmailValid)
}

func TestServiceOverviewIsIdempotent(t *testing.T) {
	service := NewService(Options{})
	ctx := context.Background()
	id := unlockedServiceSession(t, service)

	controller := NewController(ControllerOptions{Service: service})
	first, err := service.Snapshot(ctx, id)
	require.NoError(t, err)
	_, before := controller.ViewModel(first)

	_, err = service.SelectMetric(ctx, id, "spa-partners")
	require.NoError(t, err)
	again, err := service.Back(ctx, id)
	require.NoError(t, err)
	_, after := controller.ViewModel(again)

	assert.Equal(t, ViewOverview, again.CurrentView)
	assert.Len(t, after["cards"], 16)
	assert.Equal(t, before["cards"], after["cards"])
}

func TestServiceRevenueFilter(t *testing.T) {
	service := NewService(Options{})
	id := unlockedServiceSession(t, service)

	snapshot, err := service.SelectMetric(context.Background(), id, "online-sales")
	require.NoError(t, err)
	assert.Equal(t, ViewKey(CategoryRevenue), snapshot.CurrentView)

	ids := []string{}
	for _, m := range service.Catalog().ForView(CategoryRevenue) {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"organic-revenue", "online-sales"}, ids)
}

func TestServiceSendChatMessage(t *testing.T) {
	scheduler := NewManualScheduler()
	service := NewService(Options{Scheduler: scheduler})
	ctx := context.Background()
	id := unlockedServiceSession(t, service)

	before, err := service.Snapshot(ctx, id)
	require.NoError(t, err)

	_, sent, err := service.SendChatMessage(ctx, id, "Hello")
	require.NoError(t, err)
	require.True(t, sent)
	scheduler.Advance(DefaultReplyDelay)

	after, err := service.Snapshot(ctx, id)
	require.NoError(t, err)
	require.Len(t, after.Chat.Messages, len(before.Chat.Messages)+2)
	tail := after.Chat.Messages[len(after.Chat.Messages)-2:]
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "Hello"}, tail[0])
	assert.Equal(t, RoleAssistant, tail[1].Role)

	_, sent, err = service.SendChatMessage(ctx, id, "  ")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestServiceCustomReplyDelay(t *testing.T) {
	scheduler := NewManualScheduler()
	service := NewService(Options{Scheduler: scheduler, ReplyDelay: 250 * time.Millisecond})
	ctx := context.Background()
	id := unlockedServiceSession(t, service)

	_, _, err := service.SendChatMessage(ctx, id, "ping")
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Advance(250 * time.Millisecond))
}

func TestServiceChatToggleAndDraft(t *testing.T) {
	service := NewService(Options{})
	ctx := context.Background()
	id := unlockedServiceSession(t, service)

	snapshot, err := service.SetChatOpen(ctx, id, true)
	require.NoError(t, err)
	assert.True(t, snapshot.Chat.Open)

	snapshot, err = service.UpdateChatInput(ctx, id, "draft")
	require.NoError(t, err)
	assert.Equal(t, "draft", snapshot.Chat.Input)

	snapshot, err = service.SetChatOpen(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, snapshot.Chat.Open)
	assert.Equal(t, "draft", snapshot.Chat.Input)
}

func TestServiceInjectIsIdempotent(t *testing.T) {
	sink := &injectingTelemetry{}
	service := NewService(Options{Telemetry: sink})
	service.Inject(context.Background())
	service.Inject(context.Background())
	assert.Equal(t, 1, sink.injected)

	service.RecordPageView(context.Background(), SessionSnapshot{Page: PageDashboard, CurrentView: ViewBusinessModel})
	require.Len(t, sink.events, 1)
	assert.Equal(t, EventPageView, sink.events[0].name)
	assert.Equal(t, map[string]any{"page": "dashboard", "view": "business-model"}, sink.events[0].payload)
}

func TestServiceConcurrentEvents(t *testing.T) {
	scheduler := NewManualScheduler()
	service := NewService(Options{Scheduler: scheduler})
	ctx := context.Background()
	id := unlockedServiceSession(t, service)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = service.SendChatMessage(ctx, id, fmt.Sprintf("message %d", i))
			_, _ = service.SetChatOpen(ctx, id, i%2 == 0)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, scheduler.Advance(DefaultReplyDelay))

	snapshot, err := service.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snapshot.Chat.Messages, 41)
	assert.Equal(t, 0, snapshot.Chat.Pending)
}

// --- Test helpers ---

type injectingTelemetry struct {
	recordingTelemetry
	injected int
}

func (t *injectingTelemetry) Inject(context.Context) {
	t.injected++
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func unlockedServiceSession(t *testing.T, service *Service) string {
	t.Helper()
	snapshot, err := service.StartSession(context.Background())
	require.NoError(t, err)
	_, err = service.SubmitEmail(context.Background(), snapshot.ID, "jane@spa.com")
	require.NoError(t, err)
	return snapshot.ID
}
