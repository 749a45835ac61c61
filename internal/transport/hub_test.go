package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cockroachpoker/internal/app"
)

// fakeConn is a no-op wsConn so hub/client wiring can be tested without a
// real socket.
type fakeConn struct{}

func (fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (fakeConn) WriteMessage(int, []byte) error    { return nil }
func (fakeConn) SetReadDeadline(time.Time) error    { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error   { return nil }
func (fakeConn) SetPongHandler(func(string) error)  {}
func (fakeConn) Close() error                       { return nil }

func newTestClient(userID string) *Client {
	return &Client{userID: userID, conn: fakeConn{}, send: make(chan []byte, sendQueueSize), cancel: make(chan struct{})}
}

func TestBroadcastRespectsRecipients(t *testing.T) {
	hub := NewHub()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.joinRoom(alice, "room-1")
	hub.joinRoom(bob, "room-1")

	hub.Broadcast("room-1", []app.Event{
		{Kind: app.EventRoomJoined, Payload: app.RoomJoinedPayload{RoomID: "room-1"}, Recipients: []string{"alice"}},
	})

	select {
	case frame := <-alice.send:
		var decoded outboundFrame
		require.NoError(t, json.Unmarshal(frame, &decoded))
		assert.Equal(t, app.EventRoomJoined, decoded.Type)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the targeted event")
	}

	select {
	case <-bob.send:
		t.Fatal("bob should not have received an event addressed only to alice")
	default:
	}
}

func TestBroadcastWithNoRecipientsReachesEveryRoomMember(t *testing.T) {
	hub := NewHub()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.joinRoom(alice, "room-1")
	hub.joinRoom(bob, "room-1")

	hub.Broadcast("room-1", []app.Event{
		{Kind: app.EventParticipantJoined, Payload: app.ParticipantJoinedPayload{RoomID: "room-1"}},
	})

	for _, c := range []*Client{alice, bob} {
		select {
		case <-c.send:
		case <-time.After(time.Second):
			t.Fatalf("%s did not receive the broadcast event", c.userID)
		}
	}
}

func TestRegisterDisplacesPriorConnection(t *testing.T) {
	hub := NewHub()
	first := newTestClient("alice")
	second := newTestClient("alice")

	hub.register(first)
	hub.register(second)

	select {
	case frame := <-first.send:
		var decoded errorFrame
		require.NoError(t, json.Unmarshal(frame, &decoded))
		assert.Equal(t, "action_error", decoded.Type)
	case <-time.After(time.Second):
		t.Fatal("displaced connection should have received a closing error frame")
	}

	hub.mu.RLock()
	current := hub.clients["alice"]
	hub.mu.RUnlock()
	assert.Same(t, second, current)
}
