package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minSecretLen is the minimum signing key length in bytes. HS256 keys
// shorter than the hash output weaken the MAC.
const minSecretLen = 32

// sessionClaims is the JWT payload for a session token: the user id plus
// the registered issued-at/expiry claims. Nothing else is asserted.
type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited session tokens
// binding a user id. Tokens are stateless: there is no revocation list, so
// a token stays valid until its expiry. Logout only clears the cookie.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service. It fails closed: an empty or
// short signing secret is a configuration error, never silently defaulted.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, errors.New("session signing secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime. The session cookie's MaxAge
// must match it.
func (t *TokenService) TTL() time.Duration {
	return t.ttl
}

// Issue creates a signed token asserting the given user id, valid from now
// until now + TTL.
func (t *TokenService) Issue(userID string) (string, error) {
	now := t.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks the token's signature and expiry and returns the bound user
// id. The second return is false for any invalid token: malformed, wrong
// algorithm, bad signature, or expired. Callers must branch on it; there is
// no error to inspect because no caller should distinguish the cases.
func (t *TokenService) Verify(tokenStr string) (string, bool) {
	if tokenStr == "" {
		return "", false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &sessionClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return "", false
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", false
	}

	return claims.UserID, true
}
