// Command guestwallet runs the guest wallet API, the reference key issuer and
// one-shot guest and contract commands against the configured network.
//
// Configuration comes from the environment (see internal/config).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guestwallet",
	Short: "Guest access keys for the NFT contract",
	Long: `guestwallet manages a locally stored guest key that is authorized by a key
issuing service to call the NFT contract, so users can mint and trade without
creating an account first.`,
	SilenceUsage: true,
}

var (
	logLevel   string
	walletPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	contractCmd.PersistentFlags().StringVarP(&walletPath, "wallet", "w", "", "sign calls with a wallet credentials file instead of the guest key")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(issuerCmd)
	rootCmd.AddCommand(guestCmd)
	rootCmd.AddCommand(contractCmd)
	rootCmd.AddCommand(sealCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
