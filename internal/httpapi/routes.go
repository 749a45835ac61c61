package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/identity"
	"cockroachpoker/internal/session"
)

// NewRouter builds the gin engine exposing room lifecycle and state
// endpoints. The websocket endpoint itself is registered separately by
// the caller against transport.Server, which handles auth on the
// upgraded connection rather than via this middleware chain.
func NewRouter(store *session.Store, verifier *identity.Verifier) *gin.Engine {
	r := gin.Default()

	authorized := r.Group("/")
	authorized.Use(authMiddleware(verifier))
	{
		authorized.POST("/rooms", createRoom(store))
		authorized.GET("/rooms", listRooms(store))
		authorized.POST("/rooms/:id/join", joinRoom(store))
		authorized.POST("/rooms/:id/start", startRoom(store))
		authorized.POST("/rooms/:id/leave", leaveRoom(store))
		authorized.GET("/rooms/:id", getRoom(store))
		authorized.GET("/games/:id/state", getRoom(store))
	}

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

type createRoomRequest struct {
	TurnTimeLimitSeconds int `json:"turn_time_limit_seconds"`
}

func createRoom(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		_ = c.ShouldBindJSON(&req)
		if req.TurnTimeLimitSeconds <= 0 {
			req.TurnTimeLimitSeconds = 60
		}
		claims := claimsFrom(c)
		room := store.CreateRoom(claims.UserID, claims.DisplayName, req.TurnTimeLimitSeconds)
		c.JSON(http.StatusCreated, gin.H{"room_id": room.ID})
	}
}

func listRooms(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"room_ids": store.ListRooms()})
	}
}

func joinRoom(store *session.Store) gin.HandlerFunc {
	return submitIntent(store, func(c *gin.Context) session.Intent {
		claims := claimsFrom(c)
		return session.Intent{Kind: session.IntentJoin, UserID: claims.UserID, DisplayName: claims.DisplayName}
	})
}

func startRoom(store *session.Store) gin.HandlerFunc {
	return submitIntent(store, func(c *gin.Context) session.Intent {
		return session.Intent{Kind: session.IntentStart, UserID: claimsFrom(c).UserID}
	})
}

func leaveRoom(store *session.Store) gin.HandlerFunc {
	return submitIntent(store, func(c *gin.Context) session.Intent {
		return session.Intent{Kind: session.IntentLeave, UserID: claimsFrom(c).UserID}
	})
}

func getRoom(store *session.Store) gin.HandlerFunc {
	return submitIntent(store, func(c *gin.Context) session.Intent {
		return session.Intent{Kind: session.IntentState, UserID: claimsFrom(c).UserID}
	})
}

// submitIntent is the shared plumbing every mutating/read endpoint uses:
// build an Intent from the request, submit it to the named room, and
// translate the result into a JSON response or an apperr-mapped status.
func submitIntent(store *session.Store, build func(c *gin.Context) session.Intent) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("id")
		if roomID == "" {
			abortWithErr(c, apperr.New(apperr.KindMissingField, "room id is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), session.DefaultEnqueueTimeout+2*time.Second)
		defer cancel()

		snapshot, err := store.Submit(ctx, roomID, build(c))
		if err != nil {
			abortWithErr(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot.View)
	}
}
