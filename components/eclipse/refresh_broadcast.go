package eclipse

import (
	"context"
	"errors"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// SessionLookup resolves live sessions. *Service satisfies it.
type SessionLookup interface {
	Snapshot(ctx context.Context, id string) (SessionSnapshot, error)
}

var _ SessionLookup = (*Service)(nil)

// BroadcastHook fans out transcript events to in-process subscribers.
type BroadcastHook struct {
	mu       sync.RWMutex
	subs     map[int]subscriber
	next     int
	sessions SessionLookup
}

type subscriber struct {
	sessionID string
	ch        chan TranscriptEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscriber),
	}
}

// TranscriptUpdated satisfies TranscriptHook. Slow subscribers drop events.
func (h *BroadcastHook) TranscriptUpdated(_ context.Context, event TranscriptEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.sessionID != "" && sub.sessionID != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Authorize makes SubscribeSession refuse ids that lookup does not know.
func (h *BroadcastHook) Authorize(lookup SessionLookup) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = lookup
}

// Subscribe returns a channel of events for sessionID (all sessions when
// empty) and a cancel func. It is meant for in-process consumers; client
// facing streams use SubscribeSession.
func (h *BroadcastHook) Subscribe(sessionID string) (<-chan TranscriptEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan TranscriptEvent, 8)
	h.subs[id] = subscriber{sessionID: sessionID, ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SubscribeSession subscribes to one live session. Streams exposed to
// clients always go through here so a caller only sees its own transcript.
func (h *BroadcastHook) SubscribeSession(ctx context.Context, sessionID string) (<-chan TranscriptEvent, func(), error) {
	if sessionID == "" {
		return nil, nil, ErrSessionRequired
	}
	h.mu.RLock()
	lookup := h.sessions
	h.mu.RUnlock()
	if lookup != nil {
		if _, err := lookup.Snapshot(ctx, sessionID); err != nil {
			return nil, nil, err
		}
	}
	events, cancel := h.Subscribe(sessionID)
	return events, cancel, nil
}

// ServeWebSocket streams the events of the session named by the `session`
// query parameter as JSON. Unknown or missing sessions are refused before
// the upgrade.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	events, cancel, err := h.SubscribeSession(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		http.Error(w, err.Error(), streamStatus(err))
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for one session's transcript events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	events, cancel, err := h.SubscribeSession(r.Context(), r.URL.Query().Get("session"))
	if err != nil {
		http.Error(w, err.Error(), streamStatus(err))
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if err := encoder.Encode(event); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func streamStatus(err error) int {
	if errors.Is(err, ErrSessionNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
