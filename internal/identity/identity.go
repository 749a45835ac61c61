// Package identity implements C1, the identity verifier: it validates
// bearer access tokens signed with a shared HMAC secret and extracts the
// stable user identifier and display name the rest of the engine uses.
package identity

import (
	"time"

	"github.com/form3tech-oss/jwt-go"

	"cockroachpoker/internal/apperr"
)

// maxClockSkew is how long after its exp claim a token is still accepted,
// allowing for clock skew between issuer and verifier. Other time claims
// (iat, nbf) are checked by jwt-go without leeway.
const maxClockSkew = 60 * time.Second

// Claims is what Verify extracts from a valid access token.
type Claims struct {
	UserID      string
	DisplayName string
	ExpiresAt   time.Time
}

// Verifier validates bearer tokens. It is the sole holder of the signing
// secret and is safe for concurrent use: access-token verification is
// stateless.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates token and returns the identity it carries. Errors are
// apperr-typed so callers can distinguish expired from malformed tokens
// without string matching, per the C1 contract.
func (v *Verifier) Verify(token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.KindInvalidToken, "unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	// An exp-only failure is left to the skew-tolerant exp check below.
	ve, isValidationErr := err.(*jwt.ValidationError)
	expiredOnly := isValidationErr && ve.Errors == jwt.ValidationErrorExpired
	if err != nil && !expiredOnly {
		if isValidationErr && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Claims{}, apperr.New(apperr.KindTokenExpired, "token expired")
		}
		return Claims{}, apperr.New(apperr.KindInvalidToken, "malformed token: %v", err)
	}
	if !expiredOnly && !parsed.Valid {
		return Claims{}, apperr.New(apperr.KindInvalidToken, "token failed validation")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, apperr.New(apperr.KindInvalidToken, "unexpected claim shape")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return Claims{}, apperr.New(apperr.KindInvalidToken, "token missing user_id/sub claim")
	}
	displayName, _ := claims["display_name"].(string)
	if displayName == "" {
		displayName, _ = claims["email"].(string)
	}

	var expiresAt time.Time
	if expFloat, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(expFloat), 0)
		if time.Now().After(expiresAt.Add(maxClockSkew)) {
			return Claims{}, apperr.New(apperr.KindTokenExpired, "token expired at %s", expiresAt)
		}
	}

	return Claims{UserID: userID, DisplayName: displayName, ExpiresAt: expiresAt}, nil
}

// Issue mints an HS256 access token for userID/displayName, valid
// for ttl. Used by the bundled dev token issuer (cmd/server --help
// documents it) so the engine is runnable end to end without a real
// external identity provider.
func (v *Verifier) Issue(userID, displayName string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":      userID,
		"display_name": displayName,
		"iat":          time.Now().Unix(),
		"exp":          time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
