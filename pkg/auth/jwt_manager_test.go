package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(9)
	req.NoError(err)

	id, err := m.UserID(token)
	req.NoError(err)
	req.Equal(uint(9), id)

	exp, err := m.Expiry(token)
	req.NoError(err)
	req.WithinDuration(time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestJWTManager_Rejects_Foreign_And_Expired_Tokens(t *testing.T) {
	req := require.New(t)

	token, err := NewJWTManager("other", time.Hour).Generate(9)
	req.NoError(err)
	_, err = NewJWTManager("secret", time.Hour).UserID(token)
	req.ErrorIs(err, ErrInvalidToken)

	expired, err := NewJWTManager("secret", -time.Minute).Generate(9)
	req.NoError(err)
	_, err = NewJWTManager("secret", time.Hour).UserID(expired)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestJWTManager_Rejects_Other_Issuers_And_Algorithms(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	// Given a correctly signed token from another issuer
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           9,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: exp},
	}).SignedString([]byte("secret"))
	req.NoError(err)
	_, err = m.UserID(foreign)
	req.ErrorIs(err, ErrInvalidToken)

	// Given an HS512 token with our issuer
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           9,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: exp},
	}).SignedString([]byte("secret"))
	req.NoError(err)
	_, err = m.UserID(hs512)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestJWTManager_Uses_Clock(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("secret", time.Hour)
	issued := time.Now().Add(-30 * time.Minute).Truncate(time.Second)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(4)
	req.NoError(err)

	claims, err := m.Parse(token)
	req.NoError(err)
	req.Equal(uint(4), claims.UserID)
	req.Equal("4", claims.Subject)
	req.True(claims.ExpiresAt.Time.Equal(issued.Add(time.Hour)))
}

func TestExtractTokenFromHeader(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)

	_, err := ExtractTokenFromHeader(r)
	require.Error(t, err)

	r.Header.Set("Authorization", "bearer abc")
	token, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(r)
	require.ErrorIs(t, err, ErrMissingBearer)

	r.Header.Set("Authorization", "Bearer ")
	_, err = ExtractTokenFromHeader(r)
	require.ErrorIs(t, err, ErrMissingBearer)
}
