package eclipse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe("")
	defer cancel()
	event := TranscriptEvent{SessionID: "s-1", Message: ChatMessage{Role: RoleAssistant, Content: ChatReply}, Length: 3}
	if err := hook.TranscriptUpdated(context.Background(), event); err != nil {
		t.Fatalf("TranscriptUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.SessionID != event.SessionID || e.Length != 3 {
			t.Fatalf("unexpected event %+v", e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookFiltersBySession(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe("s-1")
	defer cancel()

	_ = hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: "s-2"})
	select {
	case e := <-ch:
		t.Fatalf("expected no event for other session, got %+v", e)
	default:
	}

	_ = hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: "s-1"})
	select {
	case <-ch:
	default:
		t.Fatalf("expected event for subscribed session")
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe("")
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
	if err := hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: "s-1"}); err != nil {
		t.Fatalf("TranscriptUpdated returned error: %v", err)
	}
}

func TestServeWebSocketOnlyStreamsOwnSession(t *testing.T) {
	hook := NewBroadcastHook()
	service := NewService(Options{Hook: hook})
	hook.Authorize(service)
	mine, err := service.StartSession(context.Background())
	require.NoError(t, err)
	other, err := service.StartSession(context.Background())
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=" + mine.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: other.ID, Length: 3}))
	require.NoError(t, hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: mine.ID, Length: 4}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event TranscriptEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, mine.ID, event.SessionID)
	assert.Equal(t, 4, event.Length)
}

func TestServeWebSocketRefusesMissingOrUnknownSession(t *testing.T) {
	hook := NewBroadcastHook()
	hook.Authorize(NewService(Options{Hook: hook}))
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	t.Cleanup(server.Close)
	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"?session=nobody", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, subscriberCount(hook))
}

func TestServeSSERefusesMissingOrUnknownSession(t *testing.T) {
	hook := NewBroadcastHook()
	hook.Authorize(NewService(Options{Hook: hook}))

	rec := httptest.NewRecorder()
	hook.ServeSSE(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	hook.ServeSSE(rec, httptest.NewRequest(http.MethodGet, "/events?session=nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeSSEStopsOnWriteError(t *testing.T) {
	hook := NewBroadcastHook()
	writer := &failingWriter{header: http.Header{}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		hook.ServeSSE(writer, httptest.NewRequest(http.MethodGet, "/events?session=s-1", nil))
	}()

	require.Eventually(t, func() bool { return subscriberCount(hook) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, hook.TranscriptUpdated(context.Background(), TranscriptEvent{SessionID: "s-1"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected stream to stop after a failed write")
	}
	assert.Equal(t, 1, writer.writes, "no further writes after the first failure")
	assert.Zero(t, subscriberCount(hook))
}

// --- Test helpers ---

func subscriberCount(h *BroadcastHook) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

type failingWriter struct {
	header http.Header
	writes int
}

func (w *failingWriter) Header() http.Header { return w.header }

func (w *failingWriter) WriteHeader(int) {}

func (w *failingWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errors.New("client gone")
}
