package eclipse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionStore(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, nil); err == nil {
		t.Fatalf("expected error saving nil session")
	}
	if err := store.Save(ctx, NewSession(SessionConfig{})); err == nil {
		t.Fatalf("expected error saving session without id")
	}

	session := NewSession(SessionConfig{ID: "s-1"})
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := store.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != session {
		t.Fatalf("expected the live session to be returned")
	}
	if _, err := store.Get(ctx, "s-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestInMemorySessionStoreExpiresIdleSessions(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemorySessionStore(
		WithSessionTTL(10*time.Minute),
		WithStoreClock(func() time.Time { return clock }),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, NewSession(SessionConfig{ID: "idle"})))
	require.NoError(t, store.Save(ctx, NewSession(SessionConfig{ID: "active"})))

	clock = clock.Add(6 * time.Minute)
	_, err := store.Get(ctx, "active")
	require.NoError(t, err)

	clock = clock.Add(6 * time.Minute)
	_, err = store.Get(ctx, "idle")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "active")
	assert.NoError(t, err, "reads keep a session alive")
	assert.Equal(t, 1, store.Len())
}

func TestInMemorySessionStoreSweepsAbandonedLandings(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemorySessionStore(
		WithSessionTTL(time.Minute),
		WithStoreClock(func() time.Time { return clock }),
	)
	service := NewService(Options{Store: store})
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		_, err := service.StartSession(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 500, store.Len())

	clock = clock.Add(2 * time.Minute)
	_, err := service.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len(), "saving sweeps expired sessions")

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Zero(t, store.Len())
}
