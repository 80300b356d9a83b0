package client

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// EligibilityKindHeader names the strategy used for an add-key request.
	EligibilityKindHeader = "X-Eligibility-Kind"
	// EligibilityProofHeader carries the strategy's proof.
	EligibilityProofHeader = "X-Eligibility-Proof"
)

// Eligibility attaches proof that the requester may have a key registered.
type Eligibility interface {
	Kind() string
	Apply(ctx context.Context, req *http.Request, publicKey string) error
}

// NoEligibility sends no proof at all.
type NoEligibility struct{}

func (NoEligibility) Kind() string { return "none" }

func (NoEligibility) Apply(context.Context, *http.Request, string) error { return nil }

// TokenEligibility forwards an externally obtained token, e.g. a CAPTCHA response.
type TokenEligibility struct {
	Token string
}

func (TokenEligibility) Kind() string { return "token" }

func (e TokenEligibility) Apply(_ context.Context, req *http.Request, _ string) error {
	if e.Token == "" {
		return errors.New("eligibility token is empty")
	}
	req.Header.Set(EligibilityKindHeader, e.Kind())
	req.Header.Set(EligibilityProofHeader, e.Token)
	return nil
}

// JWTEligibility signs a short-lived HS256 token bound to the public key
// being registered, with a secret shared with the issuer.
type JWTEligibility struct {
	Secret []byte
	TTL    time.Duration
}

func (JWTEligibility) Kind() string { return "jwt" }

func (e JWTEligibility) Apply(_ context.Context, req *http.Request, publicKey string) error {
	ttl := e.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   publicKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.Secret)
	if err != nil {
		return fmt.Errorf("failed to sign eligibility token: %w", err)
	}
	req.Header.Set(EligibilityKindHeader, e.Kind())
	req.Header.Set("Authorization", "Bearer "+signed)
	return nil
}

// ProofOfWork searches for a nonce so that sha256(publicKey ":" nonce) starts
// with Difficulty zero bits.
type ProofOfWork struct {
	Difficulty int
}

func (ProofOfWork) Kind() string { return "pow" }

func (p ProofOfWork) Apply(ctx context.Context, req *http.Request, publicKey string) error {
	nonce, err := SolveProofOfWork(ctx, publicKey, p.Difficulty)
	if err != nil {
		return err
	}
	req.Header.Set(EligibilityKindHeader, p.Kind())
	req.Header.Set(EligibilityProofHeader, strconv.FormatUint(nonce, 10))
	return nil
}

// SolveProofOfWork finds the smallest valid nonce. It checks ctx every 4096 attempts.
func SolveProofOfWork(ctx context.Context, publicKey string, difficulty int) (uint64, error) {
	for nonce := uint64(0); ; nonce++ {
		if nonce&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("proof of work aborted: %w", err)
			}
		}
		if VerifyProofOfWork(publicKey, nonce, difficulty) {
			return nonce, nil
		}
	}
}

// VerifyProofOfWork reports whether nonce satisfies difficulty for publicKey.
func VerifyProofOfWork(publicKey string, nonce uint64, difficulty int) bool {
	sum := sha256.Sum256([]byte(publicKey + ":" + strconv.FormatUint(nonce, 10)))
	zeros := 0
	for i := 0; i < len(sum); i += 8 {
		word := binary.BigEndian.Uint64(sum[i : i+8])
		if word == 0 {
			zeros += 64
			continue
		}
		zeros += bits.LeadingZeros64(word)
		break
	}
	return zeros >= difficulty
}
