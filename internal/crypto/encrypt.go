package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/guest-wallet/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the local credential store
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) - the store is opened once at startup,
	// so the cost is paid rarely
	defaultLogN  = 18
	minLogN      = 1
	maxLogN      = defaultLogN + 2
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12

	sealedVersion = 1
)

// LogN is the scrypt cost used by Seal. Lower it only in tests.
var LogN = defaultLogN

// Seal encrypts plaintext with a key derived from password and returns the
// JSON envelope bytes.
// password must be []byte for security (caller should zero it after use)
func Seal(plaintext, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, LogN)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	sealed := model.SealedFile{
		Version:    sealedVersion,
		LogN:       LogN,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sealed file: %w", err)
	}
	return data, nil
}

func newGCM(password, salt []byte, logN int) (cipher.AEAD, error) {
	if logN < 1 || logN > 30 {
		return nil, fmt.Errorf("invalid scrypt cost %d", logN)
	}

	// Derive key from password
	key, err := scrypt.Key(password, salt, 1<<logN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
