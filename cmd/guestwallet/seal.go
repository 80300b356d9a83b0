package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/guest-wallet/internal/config"
	"github.com/AlexZinkM/guest-wallet/internal/crypto"
	"github.com/AlexZinkM/guest-wallet/internal/session"
)

var sealCmd = &cobra.Command{
	Use:   "seal <credentials-file> <output-file>",
	Short: "Encrypt a wallet credentials file with a password",
	Long: `seal validates a plain credentials file ({"account_id", "public_key",
"private_key"}) and writes it encrypted, for use with --wallet or
ISSUER_APP_CREDENTIALS. A sealed input is re-encrypted with the current scrypt
cost after entering its password.`,
	Args: cobra.ExactArgs(2),
	RunE: runSeal,
}

func runSeal(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}
	defer clear(data)

	if crypto.IsSealed(data) {
		old, err := config.ReadPassword("Current password: ")
		if err != nil {
			return err
		}
		plain, err := crypto.Open(data, old)
		clear(old)
		if err != nil {
			return err
		}
		defer clear(plain)
		data = plain
	}

	if _, err := session.ParseWalletAccount(data); err != nil {
		return err
	}

	password, err := config.ReadPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(password)
	confirm, err := config.ReadPassword("Repeat password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}

	sealed, err := crypto.Seal(data, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sealed credentials written to %s\n", out)
	return nil
}

func isSealedFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	defer clear(data)
	return crypto.IsSealed(data)
}
