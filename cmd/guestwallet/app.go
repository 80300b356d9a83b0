package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/config"
	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/session"
	"github.com/AlexZinkM/guest-wallet/internal/store"
	"github.com/AlexZinkM/guest-wallet/near"
)

// setup loads configuration and initialises the logger.
func setup() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return cfg, nil
}

// buildApp wires store, issuer client, session manager and contract invoker.
// The returned close func releases the store.
func buildApp(cfg *config.Config) (*near.App, func(), error) {
	var password []byte
	if cfg.StoreEncrypt {
		if err := config.PromptForPassword(); err != nil {
			return nil, nil, err
		}
		p, err := config.GetStorePasswordBytes()
		if err != nil {
			return nil, nil, err
		}
		password = p
		defer clear(password)
	}

	st, err := store.NewFileStore(cfg.DataDir, password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	eligibility, err := eligibilityFor(cfg)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	issuer := client.NewIssuerClient(cfg.HelperURL, cfg.ContractName, cfg.IssuerTimeout,
		client.WithEligibility(eligibility))

	manager := session.NewManager(st, issuer, session.WithReverifyAfter(cfg.ReverifyAfter))
	if err := manager.Load(); err != nil {
		// a corrupt record leaves the manager usable without a credential
		lg := logger.Get()
		lg.Warn().Err(err).Msg("guest credential not loaded")
	}

	chain := client.NewNearClient(cfg.NodeURL, cfg.RPCTimeout)
	invoker := contract.NewInvoker(chain, cfg.ContractName, cfg.Gas)

	lg := logger.Get()
	lg.Debug().
		Str("network", cfg.NetworkID).
		Str("contract", cfg.ContractName).
		Str("store", st.Path()).
		Msg("app ready")

	return near.New(manager, invoker, cfg.AllowRevoke), func() { _ = st.Close() }, nil
}

func eligibilityFor(cfg *config.Config) (client.Eligibility, error) {
	switch cfg.Eligibility {
	case "none":
		return client.NoEligibility{}, nil
	case "token":
		return client.TokenEligibility{Token: cfg.EligibilityToken}, nil
	case "jwt":
		return client.JWTEligibility{Secret: []byte(cfg.EligibilitySecret)}, nil
	case "pow":
		return client.ProofOfWork{Difficulty: cfg.PowDifficulty}, nil
	default:
		return nil, fmt.Errorf("unknown eligibility %q", cfg.Eligibility)
	}
}

// signInWallet activates the wallet session from --wallet, prompting for the
// file password when the file is sealed and no store password is known.
func signInWallet(app *near.App, path string) error {
	password, err := config.GetStorePasswordBytes()
	if err != nil {
		password = nil
	}
	if password == nil && isSealedFile(path) {
		if err := config.PromptForPassword(); err != nil {
			return err
		}
		if password, err = config.GetStorePasswordBytes(); err != nil {
			return err
		}
	}
	defer clear(password)

	_, err = app.SignInWallet(path, password)
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
