// Package session implements C4 (the session store) and C6 (room
// lifecycle): a registry of Rooms, each exclusively owned by its own
// writer-loop goroutine, reachable by every connection through Submit.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/app"
	"cockroachpoker/internal/audit"
	"cockroachpoker/internal/logging"
)

// gracePeriod is how long an ended room is kept around (so a late
// get_state or reconnect still sees the final state) before eviction.
const gracePeriod = 30 * time.Second

// DefaultEnqueueTimeout is how long Submit will wait for room-loop queue
// space before returning busy.
const DefaultEnqueueTimeout = 2 * time.Second

var log = logging.Logger("ROOM")

// Store is the process-wide room registry. A short-lived mutex guards
// only the map itself; once a *Room is obtained, every further
// interaction goes through its own channel, not this lock.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	svc       *app.Service
	sink      audit.Sink
	broadcast Broadcaster
}

func NewStore(svc *app.Service, sink audit.Sink, broadcast Broadcaster) *Store {
	return &Store{
		rooms:     make(map[string]*Room),
		svc:       svc,
		sink:      sink,
		broadcast: broadcast,
	}
}

// CreateRoom allocates a new room with creatorUserID seated in slot 0 and
// starts its writer loop.
func (s *Store) CreateRoom(creatorUserID, creatorDisplayName string, turnTimeLimitSeconds int) *Room {
	id := uuid.New().String()
	game := s.svc.CreateRoom(id, creatorUserID, creatorDisplayName, turnTimeLimitSeconds, time.Now())

	r := newRoom(id, s.svc, s.sink, s.broadcast, log)
	r.game = game

	s.mu.Lock()
	s.rooms[id] = r
	s.mu.Unlock()

	go r.run()
	go s.watchForEviction(r)

	log.Infof("room %s created by %s", id, creatorUserID)
	return r
}

// GetRoom looks up a live room by id.
func (s *Store) GetRoom(roomID string) (*Room, error) {
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.New(apperr.KindRoomNotFound, "room %s not found", roomID)
	}
	return r, nil
}

// ListRooms returns a snapshot of every currently registered room id,
// in no particular order.
func (s *Store) ListRooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Evict removes roomID from the registry and stops its writer loop. Safe
// to call more than once.
func (s *Store) Evict(roomID string) {
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	if ok {
		delete(s.rooms, roomID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	log.Infof("room %s evicted", roomID)
}

// watchForEviction waits for a room to either finish its game and sit out
// the grace window, or to stop on its own (e.g. the creator left a
// waiting room), and then removes it from the registry.
func (s *Store) watchForEviction(r *Room) {
	select {
	case <-r.Ended():
		timer := time.NewTimer(gracePeriod)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.done:
		}
	case <-r.done:
	}
	s.Evict(r.ID)
}

// Submit is a convenience wrapper: look up roomID and forward intent to
// it with the store's default enqueue timeout.
func (s *Store) Submit(ctx context.Context, roomID string, intent Intent) (*StateSnapshot, error) {
	r, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return r.Submit(ctx, intent, DefaultEnqueueTimeout)
}
