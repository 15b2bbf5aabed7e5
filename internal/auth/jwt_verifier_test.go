package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"docsgraph/internal/domain"
	"docsgraph/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (JWTVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	v, err := NewStaticJWTVerifier(jwks, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return v, key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims *models.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test"
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)

	token := sign(t, key, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2d9dc5ca-a4a2-11ed-b9df-0242ac120003",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "john.newbie@world.com",
		Roles: []string{"administrátor"},
	})

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "2d9dc5ca-a4a2-11ed-b9df-0242ac120003", claims.GetUserID())
	assert.Equal(t, []string{"administrátor"}, claims.Roles)
}

func TestVerifyToken_Rejects(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	valid := jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	hmac := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{RegisteredClaims: valid})
	hmacToken, err := hmac.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", sign(t, key, &models.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}})},
		{"missing subject", sign(t, key, &models.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}})},
		{"foreign key", sign(t, other, &models.Claims{RegisteredClaims: valid})},
		{"hmac algorithm", hmacToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
