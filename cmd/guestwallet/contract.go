package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/near"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Call the NFT contract as the guest or a wallet account",
}

var (
	tokensOwner    string
	tokensContains string
	tokensFrom     uint64
	tokensTo       uint64
	tokensMinPrice string
	tokensMaxPrice string
	tokensMine     bool
)

func init() {
	tokensCmd := contractAction("tokens", "List tokens", cobra.NoArgs, listTokens)
	tokensCmd.Flags().StringVar(&tokensOwner, "owner", "", "only tokens owned by this account")
	tokensCmd.Flags().BoolVar(&tokensMine, "mine", false, "only tokens owned by the active account")
	tokensCmd.Flags().StringVar(&tokensContains, "contains", "", "metadata substring")
	tokensCmd.Flags().Uint64Var(&tokensFrom, "from", 0, "lowest token id")
	tokensCmd.Flags().Uint64Var(&tokensTo, "to", 0, "highest token id")
	tokensCmd.Flags().StringVar(&tokensMinPrice, "min-price", "", "minimum price in NEAR")
	tokensCmd.Flags().StringVar(&tokensMaxPrice, "max-price", "", "maximum price in NEAR")

	contractCmd.AddCommand(
		contractAction("mint <metadata>", "Mint a token", cobra.ExactArgs(1), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			return app.Mint(ctx, args[0])
		}),
		contractAction("transfer <token-id> <new-owner>", "Transfer a token", cobra.ExactArgs(2), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			id, err := parseTokenID(args[0])
			if err != nil {
				return nil, err
			}
			return app.Transfer(ctx, id, args[1])
		}),
		contractAction("price <token-id> <amount-near>", "Put a token up for sale, 0 withdraws it", cobra.ExactArgs(2), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			id, err := parseTokenID(args[0])
			if err != nil {
				return nil, err
			}
			return app.SetPrice(ctx, id, args[1])
		}),
		contractAction("purchase <token-id>", "Buy a token at its asking price", cobra.ExactArgs(1), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			id, err := parseTokenID(args[0])
			if err != nil {
				return nil, err
			}
			return app.Purchase(ctx, id)
		}),
		contractAction("withdraw [beneficiary]", "Pay out sale proceeds", cobra.MaximumNArgs(1), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			return app.Withdraw(ctx, optionalArg(args))
		}),
		contractAction("proceeds [account-id]", "Show withdrawable sale proceeds", cobra.MaximumNArgs(1), func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error) {
			return app.GetProceeds(ctx, optionalArg(args))
		}),
		tokensCmd,
	)
}

type contractFunc func(ctx context.Context, cmd *cobra.Command, app *near.App, args []string) (any, error)

// contractAction builds a subcommand that signs in with --wallet when given
// and otherwise uses the stored guest session.
func contractAction(use, short string, args cobra.PositionalArgs, fn contractFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			app, closeApp, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer closeApp()

			if walletPath != "" {
				if err := signInWallet(app, walletPath); err != nil {
					return err
				}
			}

			out, err := fn(commandContext(cmd), cmd, app, args)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func listTokens(ctx context.Context, cmd *cobra.Command, app *near.App, _ []string) (any, error) {
	req := &model.TokenListRequest{Mine: tokensMine}
	flags := cmd.Flags()
	if flags.Changed("owner") {
		req.Owner = &tokensOwner
	}
	if flags.Changed("contains") {
		req.Contains = &tokensContains
	}
	if flags.Changed("from") {
		req.FromID = &tokensFrom
	}
	if flags.Changed("to") {
		req.ToID = &tokensTo
	}
	if flags.Changed("min-price") {
		req.MinPrice = &tokensMinPrice
	}
	if flags.Changed("max-price") {
		req.MaxPrice = &tokensMaxPrice
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return app.ListTokens(ctx, req)
}

func parseTokenID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
