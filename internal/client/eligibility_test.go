package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://issuer.local/add-key", nil)
	require.NoError(t, err)
	return req
}

func TestNoEligibility(t *testing.T) {
	req := newRequest(t)
	require.NoError(t, NoEligibility{}.Apply(context.Background(), req, "ed25519:abc"))
	assert.Empty(t, req.Header.Get(EligibilityKindHeader))
}

func TestTokenEligibility(t *testing.T) {
	req := newRequest(t)
	require.NoError(t, TokenEligibility{Token: "t0k"}.Apply(context.Background(), req, "ed25519:abc"))
	assert.Equal(t, "token", req.Header.Get(EligibilityKindHeader))
	assert.Equal(t, "t0k", req.Header.Get(EligibilityProofHeader))

	require.Error(t, TokenEligibility{}.Apply(context.Background(), newRequest(t), "ed25519:abc"))
}

func TestJWTEligibility(t *testing.T) {
	secret := []byte("shared-secret")
	req := newRequest(t)
	require.NoError(t, JWTEligibility{Secret: secret, TTL: time.Minute}.Apply(context.Background(), req, "ed25519:abc"))
	assert.Equal(t, "jwt", req.Header.Get(EligibilityKindHeader))

	raw, ok := strings.CutPrefix(req.Header.Get("Authorization"), "Bearer ")
	require.True(t, ok)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "ed25519:abc", claims.Subject)
}

func TestProofOfWork(t *testing.T) {
	const difficulty = 8
	req := newRequest(t)
	require.NoError(t, ProofOfWork{Difficulty: difficulty}.Apply(context.Background(), req, "ed25519:abc"))
	assert.Equal(t, "pow", req.Header.Get(EligibilityKindHeader))

	nonce, err := strconv.ParseUint(req.Header.Get(EligibilityProofHeader), 10, 64)
	require.NoError(t, err)
	assert.True(t, VerifyProofOfWork("ed25519:abc", nonce, difficulty))
	assert.False(t, VerifyProofOfWork("ed25519:other", nonce, 64))
}

func TestVerifyProofOfWork_ZeroDifficulty(t *testing.T) {
	assert.True(t, VerifyProofOfWork("ed25519:abc", 0, 0))
}

func TestSolveProofOfWork_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SolveProofOfWork(ctx, "ed25519:abc", 256)
	require.ErrorIs(t, err, context.Canceled)
}
