// Package auth issues and checks the access tokens used by REST calls and
// websocket handshakes.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "planner-collab"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingBearer = errors.New("invalid Authorization header")
)

// Claims carries the numeric user id next to the registered claims.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs an HS256 token for userID that lives for the manager's ttl.
func (m *JWTManager) Generate(userID uint) (string, error) {
	issuedAt := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse checks signature, expiry and issuer. Any failure is ErrInvalidToken.
func (m *JWTManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !claims.VerifyIssuer(issuer, true) || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) UserID(raw string) (uint, error) {
	claims, err := m.Parse(raw)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Expiry is used to size the logout blacklist entry.
func (m *JWTManager) Expiry(raw string) (time.Time, error) {
	claims, err := m.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func ExtractTokenFromHeader(r *http.Request) (string, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
