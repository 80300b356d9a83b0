// Package keys holds guest key material: mnemonic-derived ed25519 key pairs,
// their "ed25519:<base58>" string forms and the implicit account id derived
// from a public key.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/lmars/go-slip10"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

const (
	// KeyTypePrefix prefixes every encoded key string.
	KeyTypePrefix = "ed25519:"

	mnemonicEntropyBits = 128 // 12 words

	hardened = 0x80000000
)

// derivationPath is m/44'/397'/0', the SLIP-10 path used for NEAR seed phrases.
var derivationPath = []uint32{hardened + 44, hardened + 397, hardened}

var (
	ErrInvalidSeedPhrase = errors.New("invalid seed phrase")
	ErrInvalidKey        = errors.New("invalid key")
)

// KeyPair is an ed25519 key pair, optionally with the seed phrase it came from.
type KeyPair struct {
	seedPhrase string
	private    solana.PrivateKey
}

// GenerateSeedPhrase creates a fresh 12-word mnemonic and the key pair derived from it.
func GenerateSeedPhrase() (*KeyPair, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to build mnemonic: %w", err)
	}
	return FromSeedPhrase(mnemonic)
}

// FromSeedPhrase derives the key pair for a mnemonic.
func FromSeedPhrase(phrase string) (*KeyPair, error) {
	phrase = normalizeSeedPhrase(phrase)
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidSeedPhrase
	}

	seed := bip39.NewSeed(phrase, "")
	defer clear(seed)

	node, err := slip10.NewNode(seed, slip10.Ed25519)
	if err != nil {
		return nil, fmt.Errorf("failed to create master node: %w", err)
	}
	for _, index := range derivationPath {
		node, err = node.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child: %w", err)
		}
	}

	return &KeyPair{
		seedPhrase: phrase,
		private:    solana.PrivateKey(ed25519.NewKeyFromSeed(node.Key)),
	}, nil
}

// ParseSecretKey decodes an "ed25519:<base58>" 64-byte secret key.
func ParseSecretKey(s string) (*KeyPair, error) {
	raw, err := decodeKey(s, ed25519.PrivateKeySize)
	if err != nil {
		return nil, err
	}
	kp := &KeyPair{private: solana.PrivateKey(raw)}

	// the trailing half of an ed25519 secret key must be its own public key
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !ed25519.PrivateKey(raw).Equal(derived) {
		return nil, fmt.Errorf("%w: secret key does not match embedded public key", ErrInvalidKey)
	}
	return kp, nil
}

// ParsePublicKey decodes an "ed25519:<base58>" public key.
func ParsePublicKey(s string) (solana.PublicKey, error) {
	raw, err := decodeKey(s, ed25519.PublicKeySize)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// FormatPublicKey encodes a public key in "ed25519:<base58>" form.
func FormatPublicKey(pub solana.PublicKey) string {
	return KeyTypePrefix + base58.Encode(pub[:])
}

// ImplicitAccountID returns the implicit account id (lowercase hex of the raw
// key bytes) for an encoded public key.
func ImplicitAccountID(publicKey string) (string, error) {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	return implicitID(pub), nil
}

func implicitID(pub solana.PublicKey) string {
	return hex.EncodeToString(pub[:])
}

// Verify checks an ed25519 signature against an encoded public key.
func Verify(publicKey string, message, signature []byte) bool {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub[:], message, signature)
}

// SeedPhrase returns the mnemonic, empty when the pair was parsed from a secret key.
func (k *KeyPair) SeedPhrase() string {
	return k.seedPhrase
}

func (k *KeyPair) PublicKey() solana.PublicKey {
	return k.private.PublicKey()
}

// PublicKeyString returns the "ed25519:<base58>" public key.
func (k *KeyPair) PublicKeyString() string {
	return FormatPublicKey(k.PublicKey())
}

// SecretKeyString returns the "ed25519:<base58>" secret key.
func (k *KeyPair) SecretKeyString() string {
	return KeyTypePrefix + base58.Encode(k.private)
}

// ImplicitAccountID returns the implicit account id of this pair's public key.
func (k *KeyPair) ImplicitAccountID() string {
	return implicitID(k.PublicKey())
}

// Sign signs message with the private key.
func (k *KeyPair) Sign(message []byte) ([]byte, error) {
	sig, err := k.private.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	return sig[:], nil
}

// Wipe zeroes the private key bytes. The pair is unusable afterwards.
func (k *KeyPair) Wipe() {
	clear(k.private)
	k.seedPhrase = ""
}

func decodeKey(s string, size int) ([]byte, error) {
	encoded, ok := strings.CutPrefix(strings.TrimSpace(s), KeyTypePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidKey, KeyTypePrefix)
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, size, len(raw))
	}
	return raw, nil
}

func normalizeSeedPhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
