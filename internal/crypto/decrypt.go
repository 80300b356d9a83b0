package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// ErrInvalidPassword is returned when the envelope cannot be opened with the given password.
var ErrInvalidPassword = errors.New("invalid password")

// Open decrypts an envelope produced by Seal.
// password must be []byte for security (caller should zero it after use)
func Open(data, password []byte) ([]byte, error) {
	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var sealed model.SealedFile
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sealed file: %w", err)
	}
	if sealed.Version != sealedVersion {
		return nil, fmt.Errorf("unsupported sealed file version %d", sealed.Version)
	}
	// the cost comes from the file, bound it before scrypt allocates 128*r*2^logN bytes
	if sealed.LogN < minLogN || sealed.LogN > maxLogN {
		return nil, fmt.Errorf("scrypt cost logN=%d out of range [%d, %d]", sealed.LogN, minLogN, maxLogN)
	}

	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	if len(nonce) != nonceLen {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(password, salt, sealed.LogN)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// IsSealed reports whether data looks like a Seal envelope rather than a plain JSON store.
func IsSealed(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	var envelope struct {
		CipherText *string `json:"cipherText"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false
	}
	return envelope.CipherText != nil
}
