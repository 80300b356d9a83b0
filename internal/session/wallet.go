package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlexZinkM/guest-wallet/internal/crypto"
	"github.com/AlexZinkM/guest-wallet/internal/keys"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// LoadWalletAccount reads a credentials file of the form
// {"account_id", "public_key", "private_key"}. Sealed files need a password.
func LoadWalletAccount(path string, password []byte) (*model.WalletAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	defer clear(data)

	if crypto.IsSealed(data) {
		if len(password) == 0 {
			return nil, fmt.Errorf("credentials file is encrypted, password required")
		}
		plain, err := crypto.Open(data, password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credentials file: %w", err)
		}
		defer clear(plain)
		data = plain
	}

	return ParseWalletAccount(data)
}

// ParseWalletAccount decodes and validates plain credentials file contents.
func ParseWalletAccount(data []byte) (*model.WalletAccount, error) {
	var account model.WalletAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if err := ValidateWalletAccount(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ValidateWalletAccount checks the private key belongs to the public key.
func ValidateWalletAccount(account *model.WalletAccount) error {
	if account.AccountID == "" {
		return fmt.Errorf("credentials: account_id is empty")
	}
	kp, err := keys.ParseSecretKey(account.PrivateKey)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if account.PublicKey != "" && kp.PublicKeyString() != account.PublicKey {
		return fmt.Errorf("credentials: private key does not match public key")
	}
	return nil
}
