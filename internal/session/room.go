package session

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/app"
	"cockroachpoker/internal/audit"
	"cockroachpoker/internal/domain"
)

const inboundQueueSize = 64

// Broadcaster fans app.Events out to connected clients, applying privacy
// filtering per recipient before anything leaves the process. The
// transport hub implements this; session never touches a connection
// directly.
type Broadcaster interface {
	Broadcast(roomID string, events []app.Event)
}

// Room owns one game's state exclusively. All reads and writes to its
// *domain.Game happen on the single goroutine run() drives; every other
// caller only ever talks to the room through Submit.
type Room struct {
	ID   string
	game *domain.Game

	svc        *app.Service
	sink       audit.Sink
	broadcast  Broadcaster
	log        slog.Logger

	inbound chan Intent
	stop    chan struct{}
	done    chan struct{}
	ended   chan struct{} // closed once the game reaches a terminal status
}

func newRoom(id string, svc *app.Service, sink audit.Sink, broadcast Broadcaster, log slog.Logger) *Room {
	r := &Room{
		ID:        id,
		svc:       svc,
		sink:      sink,
		broadcast: broadcast,
		log:       log,
		inbound:   make(chan Intent, inboundQueueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		ended:     make(chan struct{}),
	}
	return r
}

// Ended reports terminal-state completion; the store watches it to start
// the grace-window eviction timer.
func (r *Room) Ended() <-chan struct{} {
	return r.ended
}

// Submit enqueues intent and waits for its result. enqueueTimeout bounds
// how long Submit waits for queue space before returning busy; ctx bounds
// the whole call, including waiting for the room's reply.
func (r *Room) Submit(ctx context.Context, intent Intent, enqueueTimeout time.Duration) (*StateSnapshot, error) {
	intent.Reply = make(chan Result, 1)

	timer := time.NewTimer(enqueueTimeout)
	defer timer.Stop()

	select {
	case r.inbound <- intent:
	case <-timer.C:
		return nil, apperr.New(apperr.KindBusy, "room %s intent queue is full", r.ID)
	case <-r.done:
		return nil, apperr.New(apperr.KindRoomNotFound, "room %s has been evicted", r.ID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-intent.Reply:
		return res.GameState, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run is the single writer loop: it drains inbound one intent at a time,
// applies it, and only then moves to the next. This is what makes every
// invariant in the game state machine hold without per-field locks.
func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case intent := <-r.inbound:
			if intent.Cancel != nil {
				select {
				case <-intent.Cancel:
					continue // connection gone before we got to it; drop silently
				default:
				}
			}
			r.handle(intent)
		case <-r.stop:
			return
		}
	}
}

func (r *Room) handle(intent Intent) {
	now := time.Now()
	var (
		events  []app.Event
		entries []audit.Entry
		err     error
	)

	switch intent.Kind {
	case IntentJoin:
		if r.game == nil {
			err = apperr.New(apperr.KindRoomNotFound, "room %s has no game", r.ID)
			break
		}
		events, entries, err = r.svc.JoinRoom(r.game, intent.UserID, intent.DisplayName)
	case IntentLeave:
		var destroyed bool
		destroyed, events, entries, err = r.svc.LeaveRoom(r.game, intent.UserID)
		if err == nil && destroyed {
			defer close(r.stop)
		}
	case IntentStart:
		events, entries, err = r.svc.StartGame(r.game, intent.UserID, now)
	case IntentClaim:
		roundID := uuid.New().String()
		events, entries, err = r.svc.Claim(r.game, intent.UserID, intent.CardID, intent.ClaimedCreature, intent.TargetUserID, roundID, now)
	case IntentRespond:
		events, entries, err = r.svc.Respond(r.game, intent.UserID, intent.RoundID, intent.BelieveClaim, now)
	case IntentPass:
		events, entries, err = r.svc.Pass(r.game, intent.UserID, intent.RoundID, intent.TargetUserID, intent.ClaimedCreature, now)
	case IntentState:
		// no-op: falls through to the snapshot reply below
	default:
		err = apperr.New(apperr.KindInvalidEnum, "unknown intent kind %q", intent.Kind)
	}

	if err == nil && r.game != nil {
		if verr := domain.CheckInvariants(r.game); verr != nil {
			r.log.Errorf("room %s: invariant violation after %s: %v", r.ID, intent.Kind, verr)
			err = apperr.New(apperr.KindServerError, "internal state error")
			defer close(r.stop)
		}
	}

	for _, e := range entries {
		if aerr := r.sink.Append(e); aerr != nil {
			r.log.Warnf("room %s: audit append failed: %v", r.ID, aerr)
		}
	}

	if len(events) > 0 && r.broadcast != nil {
		r.broadcast.Broadcast(r.ID, events)
	}

	if err == nil && r.game != nil && r.game.Status == domain.StatusCompleted {
		select {
		case <-r.ended:
		default:
			close(r.ended)
		}
	}

	var snapshot *StateSnapshot
	if err == nil && r.game != nil {
		snapshot = &StateSnapshot{RoomID: r.ID, View: r.svc.BuildGameStateView(r.game, intent.UserID)}
	}

	select {
	case intent.Reply <- Result{GameState: snapshot, Err: err}:
	default:
		r.log.Warnf("room %s: reply channel for %s intent not drained", r.ID, intent.Kind)
	}
}

func (r *Room) String() string {
	return fmt.Sprintf("room(%s)", r.ID)
}
