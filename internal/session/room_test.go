package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cockroachpoker/internal/app"
	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/audit"
	"cockroachpoker/internal/domain"
)

// recordingSink is an in-memory audit.Sink that remembers every entry
// appended to it, the way the retrieval pack's InMemoryDB test doubles
// record calls instead of touching a real database.
type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) Append(e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *recordingSink) snapshot() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// recordingBroadcaster records every event fanned out for each room.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events map[string][]app.Event
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{events: make(map[string][]app.Event)}
}

func (b *recordingBroadcaster) Broadcast(roomID string, events []app.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[roomID] = append(b.events[roomID], events...)
}

func (b *recordingBroadcaster) forRoom(roomID string) []app.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]app.Event, len(b.events[roomID]))
	copy(out, b.events[roomID])
	return out
}

func newTestStore() (*Store, *recordingSink, *recordingBroadcaster) {
	sink := &recordingSink{}
	broadcast := newRecordingBroadcaster()
	store := NewStore(app.NewService(), sink, broadcast)
	return store, sink, broadcast
}

func TestStoreJoinStartRoundTrip(t *testing.T) {
	store, sink, broadcast := newTestStore()
	room := store.CreateRoom("creator", "Creator", 60)

	ctx := context.Background()
	_, err := room.Submit(ctx, Intent{Kind: IntentJoin, UserID: "opponent", DisplayName: "Opponent"}, time.Second)
	require.NoError(t, err)

	snap, err := room.Submit(ctx, Intent{Kind: IntentStart, UserID: "creator"}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, snap)

	view, ok := snap.View.(app.GameStateView)
	require.True(t, ok, "expected a GameStateView")
	assert.Equal(t, string(domain.StatusInProgress), view.Status)

	events := broadcast.forRoom(room.ID)
	assert.NotEmpty(t, events)

	entries := sink.snapshot()
	var sawJoin bool
	for _, e := range entries {
		if e.ActionType == audit.ActionJoinGame {
			sawJoin = true
		}
	}
	assert.True(t, sawJoin, "expected a join_game audit entry")
}

func TestStoreRejectsStartByNonCreator(t *testing.T) {
	store, _, _ := newTestStore()
	room := store.CreateRoom("creator", "Creator", 60)

	ctx := context.Background()
	_, err := room.Submit(ctx, Intent{Kind: IntentJoin, UserID: "opponent", DisplayName: "Opponent"}, time.Second)
	require.NoError(t, err)

	_, err = room.Submit(ctx, Intent{Kind: IntentStart, UserID: "opponent"}, time.Second)
	require.Error(t, err)
}

func TestSubmitReturnsBusyWhenQueueIsFull(t *testing.T) {
	// Built directly, without starting run(), so nothing drains inbound
	// and the queue-full path is deterministic rather than racing a
	// live writer loop.
	room := newRoom("r1", app.NewService(), &recordingSink{}, newRecordingBroadcaster(), log)
	for i := 0; i < inboundQueueSize; i++ {
		room.inbound <- Intent{Kind: IntentState, UserID: "creator", Reply: make(chan Result, 1)}
	}

	_, err := room.Submit(context.Background(), Intent{Kind: IntentState, UserID: "creator"}, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBusy, apperr.KindOf(err))
}

func TestGetRoomReportsNotFoundAfterEviction(t *testing.T) {
	store, _, _ := newTestStore()
	room := store.CreateRoom("creator", "Creator", 60)
	store.Evict(room.ID)

	_, err := store.GetRoom(room.ID)
	assert.Error(t, err)
}
