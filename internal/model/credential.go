package model

import (
	"fmt"

	"github.com/AlexZinkM/guest-wallet/internal/keys"
)

// LocalKeysName is the single slot the guest credential is stored under.
const LocalKeysName = "__LOCAL_KEYS"

// Credential is the locally persisted guest credential.
type Credential struct {
	SeedPhrase       string `json:"seedPhrase"`
	PublicKey        string `json:"publicKey"`
	SecretKey        string `json:"secretKey"`
	DerivedAccountID string `json:"derivedAccountId"`
	SignedIn         bool   `json:"signedIn"`
	VerifiedAt       string `json:"verifiedAt,omitempty"` // RFC3339, last successful has-access-key check
}

// NewCredential builds a credential for a verified key pair.
func NewCredential(kp *keys.KeyPair, verifiedAt string) *Credential {
	return &Credential{
		SeedPhrase:       kp.SeedPhrase(),
		PublicKey:        kp.PublicKeyString(),
		SecretKey:        kp.SecretKeyString(),
		DerivedAccountID: kp.ImplicitAccountID(),
		SignedIn:         true,
		VerifiedAt:       verifiedAt,
	}
}

// Clone returns an independent copy.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// Validate checks that the record is internally consistent: the secret key
// belongs to the public key and derivedAccountId matches the public key.
func (c *Credential) Validate() error {
	kp, err := keys.ParseSecretKey(c.SecretKey)
	if err != nil {
		return fmt.Errorf("invalid secret key: %w", err)
	}
	if kp.PublicKeyString() != c.PublicKey {
		return fmt.Errorf("secret key does not match public key")
	}
	derived, err := keys.ImplicitAccountID(c.PublicKey)
	if err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	if derived != c.DerivedAccountID {
		return fmt.Errorf("derivedAccountId %q does not match public key", c.DerivedAccountID)
	}
	return nil
}

// KeyPair decodes the stored secret key.
func (c *Credential) KeyPair() (*keys.KeyPair, error) {
	return keys.ParseSecretKey(c.SecretKey)
}
