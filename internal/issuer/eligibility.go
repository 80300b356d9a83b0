package issuer

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlexZinkM/guest-wallet/internal/client"
)

// ErrIneligible is returned when an add-key request carries no acceptable proof.
var ErrIneligible = errors.New("requester is not eligible for a guest key")

// Verifier checks the eligibility proof of an add-key request.
type Verifier interface {
	Verify(r *http.Request, publicKey string) error
}

// AllowAll accepts every request.
type AllowAll struct{}

func (AllowAll) Verify(*http.Request, string) error { return nil }

// TokenVerifier accepts a fixed shared token.
type TokenVerifier struct {
	Token string
}

func (v TokenVerifier) Verify(r *http.Request, _ string) error {
	if err := expectKind(r, "token"); err != nil {
		return err
	}
	got := r.Header.Get(client.EligibilityProofHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(v.Token)) != 1 {
		return fmt.Errorf("%w: bad token", ErrIneligible)
	}
	return nil
}

// JWTVerifier accepts an HS256 bearer token whose subject is the key being registered.
type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Verify(r *http.Request, publicKey string) error {
	if err := expectKind(r, "jwt"); err != nil {
		return err
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return fmt.Errorf("%w: missing bearer token", ErrIneligible)
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.Secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return fmt.Errorf("%w: invalid token", ErrIneligible)
	}
	if claims.Subject != publicKey {
		return fmt.Errorf("%w: token issued for another key", ErrIneligible)
	}
	return nil
}

// PowVerifier accepts a proof-of-work nonce of the configured difficulty.
type PowVerifier struct {
	Difficulty int
}

func (v PowVerifier) Verify(r *http.Request, publicKey string) error {
	if err := expectKind(r, "pow"); err != nil {
		return err
	}
	nonce, err := strconv.ParseUint(r.Header.Get(client.EligibilityProofHeader), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed nonce", ErrIneligible)
	}
	if !client.VerifyProofOfWork(publicKey, nonce, v.Difficulty) {
		return fmt.Errorf("%w: insufficient work", ErrIneligible)
	}
	return nil
}

// NewVerifier returns the verifier for a strategy name as used in ELIGIBILITY.
func NewVerifier(kind, token, secret string, difficulty int) (Verifier, error) {
	switch kind {
	case "", "none":
		return AllowAll{}, nil
	case "token":
		if token == "" {
			return nil, errors.New("token eligibility needs a token")
		}
		return TokenVerifier{Token: token}, nil
	case "jwt":
		if secret == "" {
			return nil, errors.New("jwt eligibility needs a secret")
		}
		return JWTVerifier{Secret: []byte(secret)}, nil
	case "pow":
		return PowVerifier{Difficulty: difficulty}, nil
	default:
		return nil, fmt.Errorf("unknown eligibility kind %q", kind)
	}
}

func expectKind(r *http.Request, kind string) error {
	if got := r.Header.Get(client.EligibilityKindHeader); got != kind {
		return fmt.Errorf("%w: expected %s proof, got %q", ErrIneligible, kind, got)
	}
	return nil
}
