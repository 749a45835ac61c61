// Package httpapi implements C8, the HTTP control plane: room creation
// and lifecycle endpoints fronting the same session.Store the websocket
// transport drives, using gin the way the retrieval pack's poker
// platforms route and authenticate their REST surface.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cockroachpoker/internal/apperr"
	"cockroachpoker/internal/identity"
)

const identityContextKey = "identity"

// authMiddleware requires a bearer token and stashes the verified claims
// on the gin context for handlers to read.
func authMiddleware(verifier *identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithErr(c, apperr.New(apperr.KindInvalidToken, "missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := verifier.Verify(token)
		if err != nil {
			abortWithErr(c, err)
			return
		}
		c.Set(identityContextKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) identity.Claims {
	v, _ := c.Get(identityContextKey)
	claims, _ := v.(identity.Claims)
	return claims
}

// statusFor maps an apperr.Kind to the HTTP status the control plane
// reports it as, per the error taxonomy's transport mapping.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidToken, apperr.KindTokenExpired:
		return http.StatusUnauthorized
	case apperr.KindNotParticipant, apperr.KindNotCreator, apperr.KindNotYourTurn, apperr.KindUserBanned:
		return http.StatusForbidden
	case apperr.KindRoomNotFound, apperr.KindRoundNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyJoined, apperr.KindRoomFull, apperr.KindGameNotActive, apperr.KindRoundCompleted:
		return http.StatusConflict
	case apperr.KindMissingField, apperr.KindInvalidEnum, apperr.KindInvalidUUID, apperr.KindOutOfRange,
		apperr.KindCardNotInHand, apperr.KindInvalidTarget, apperr.KindClaimCreatureNotRecognized:
		return http.StatusBadRequest
	case apperr.KindBusy, apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func abortWithErr(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.AbortWithStatusJSON(statusFor(kind), gin.H{
		"code":    string(kind),
		"message": err.Error(),
	})
}
