package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/identity"
	"cockroachpoker/internal/session"
)

const (
	preAuthTimeout = 10 * time.Second
	writeTimeout   = 5 * time.Second
	sendQueueSize  = 32
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
)

// wsConn is the subset of *websocket.Conn a Client needs. It exists so
// tests can exercise Client/Hub wiring against a fake instead of a real
// socket.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one authenticated websocket connection. All outbound writes
// go through writePump so only one goroutine ever touches conn.Write*;
// the hub and rooms only ever hand it bytes via enqueue.
type Client struct {
	hub      *Hub
	conn     wsConn
	verifier *identity.Verifier
	store    *session.Store

	userID      string
	displayName string
	roomID      string

	send   chan []byte
	cancel chan struct{} // closed when the connection goes away
}

func NewClient(conn *websocket.Conn, hub *Hub, verifier *identity.Verifier, store *session.Store) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		verifier: verifier,
		store:    store,
		send:     make(chan []byte, sendQueueSize),
		cancel:   make(chan struct{}),
	}
}

// Serve runs the connection to completion: authenticate, then pump reads
// and writes until either side closes. It blocks until the connection
// ends.
func (c *Client) Serve() {
	go c.writePump()
	defer func() {
		close(c.cancel)
		c.hub.unregister(c)
		c.conn.Close()
	}()

	if !c.authenticate() {
		return
	}
	c.hub.register(c)
	c.readLoop()
}

// authenticate enforces the pre-auth grace window: the first frame must
// be an authenticate frame bearing a valid token, or the connection is
// dropped.
func (c *Client) authenticate() bool {
	c.conn.SetReadDeadline(time.Now().Add(preAuthTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return false
	}

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "authenticate" {
		c.enqueue(encodeError(string(apperr.KindInvalidToken), "first frame must be authenticate", ""))
		return false
	}

	claims, err := c.verifier.Verify(frame.Token)
	if err != nil {
		c.enqueue(encodeError(string(apperr.KindOf(err)), err.Error(), ""))
		return false
	}

	c.userID = claims.UserID
	c.displayName = claims.DisplayName
	c.conn.SetReadDeadline(time.Time{})
	return true
}

func (c *Client) readLoop() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.enqueue(encodeError(string(apperr.KindMissingField), "malformed frame", ""))
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame inboundFrame) {
	if frame.Type == "heartbeat" {
		c.enqueue(encodeHeartbeatAck())
		return
	}

	intent, roomID, ok := c.toIntent(frame)
	if !ok {
		c.enqueue(encodeError(string(apperr.KindInvalidEnum), "unrecognized frame type", ""))
		return
	}
	intent.Cancel = c.cancel

	if frame.Type == "join_room" {
		c.hub.joinRoom(c, roomID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), session.DefaultEnqueueTimeout+2*time.Second)
	defer cancel()
	_, err := c.store.Submit(ctx, roomID, intent)
	if err != nil {
		c.enqueue(encodeError(string(apperr.KindOf(err)), err.Error(), ""))
	}
}

func (c *Client) toIntent(frame inboundFrame) (session.Intent, string, bool) {
	switch frame.Type {
	case "join_room":
		return session.Intent{Kind: session.IntentJoin, UserID: c.userID, DisplayName: c.displayName}, frame.RoomID, true
	case "leave_room":
		return session.Intent{Kind: session.IntentLeave, UserID: c.userID}, frame.RoomID, true
	case "start_game":
		return session.Intent{Kind: session.IntentStart, UserID: c.userID}, frame.RoomID, true
	case "claim":
		return session.Intent{
			Kind: session.IntentClaim, UserID: c.userID,
			CardID: frame.CardID, ClaimedCreature: frame.ClaimedCreature, TargetUserID: frame.TargetUserID,
		}, frame.RoomID, true
	case "respond":
		return session.Intent{
			Kind: session.IntentRespond, UserID: c.userID,
			RoundID: frame.RoundID, BelieveClaim: frame.BelieveClaim,
		}, frame.RoomID, true
	case "pass":
		return session.Intent{
			Kind: session.IntentPass, UserID: c.userID,
			RoundID: frame.RoundID, TargetUserID: frame.TargetUserID, ClaimedCreature: frame.ClaimedCreature,
		}, frame.RoomID, true
	case "get_state":
		return session.Intent{Kind: session.IntentState, UserID: c.userID}, frame.RoomID, true
	default:
		return session.Intent{}, "", false
	}
}

// enqueue is safe to call from any goroutine (the hub's Broadcast, or
// this client's own readLoop). A full send queue means a slow or dead
// client; it is dropped rather than let one connection back-pressure the
// whole hub.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Warnf("dropping connection for user %s: send queue full", c.userID)
		c.conn.Close()
	}
}

// closeDisplaced is called on the prior connection when a new one
// registers for the same user id.
func (c *Client) closeDisplaced() {
	c.enqueue(encodeError(string(apperr.KindServerError), "connection replaced by a newer session", ""))
	c.conn.Close()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.cancel:
			return
		}
	}
}
