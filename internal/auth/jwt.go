// Package auth implements bearer-credential verification for the Speech
// Service. Identity issuance belongs to the external auth collaborator; the
// backend only needs to validate a presented token and recover the stable
// user identifier that partitions the speech store.
//
// The concrete verifier accepts HS256 JWTs whose claims carry a UserID.
// Anything pluggable (a different signature scheme, a remote verification
// call) can be substituted through the Verifier interface.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a credential is missing, malformed,
// expired, or fails signature verification.
var ErrInvalidToken = errors.New("invalid token")

// Verifier validates a bearer credential and yields the stable user
// identifier it was issued for.
type Verifier interface {
	// Verify returns the user ID carried by token, or ErrInvalidToken.
	Verify(token string) (string, error)
}

// Claims is the JWT claim set used by the Trippingly token issuer: the
// registered claims plus the owning user's identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// JWTVerifier verifies HS256-signed tokens with a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a verifier bound to the given HMAC secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify implements Verifier. It checks the signature, the standard
// validity window, and that a non-empty user ID is present.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// GenerateToken issues an HS256 token for userID valid for ttl. The real
// deployment receives tokens from the external auth collaborator; this
// helper backs the CLI's local sign-in and the test suite.
func GenerateToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(secret))
}
