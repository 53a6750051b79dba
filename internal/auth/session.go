package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "cashtrackr-api"

// ErrInvalidSession is returned for any session token that cannot be
// trusted: bad signature, unexpected algorithm, malformed payload, missing
// account id or expiry.
var ErrInvalidSession = errors.New("invalid session token")

// Claims represents the claims in a session JWT
type Claims struct {
	ID uint `json:"id"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies stateless session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager using an HMAC secret.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate mints a session token for the account.
func (m *SessionManager) Generate(accountID uint) (string, error) {
	now := m.now()
	claims := &Claims{
		ID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Subject:   strconv.FormatUint(uint64(accountID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify returns the account id embedded in a valid token.
func (m *SessionManager) Verify(tokenString string) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID == 0 {
		return 0, fmt.Errorf("%w: missing account id", ErrInvalidSession)
	}
	return claims.ID, nil
}
