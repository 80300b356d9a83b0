package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/config"
	"github.com/AlexZinkM/guest-wallet/internal/issuer"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/session"
)

const issuerRateWindow = time.Hour

var issuerCmd = &cobra.Command{
	Use:   "serve-issuer",
	Short: "Serve the reference key issuing service",
	Long: `serve-issuer runs the /add-key, /has-access-key and /delete-access-keys
endpoints. With ISSUER_APP_CREDENTIALS pointing at the contract account's
credentials file, authorized keys are also added on chain.`,
	RunE: runIssuer,
}

func runIssuer(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	verifier, err := issuer.NewVerifier(cfg.Eligibility, cfg.EligibilityToken, cfg.EligibilitySecret, cfg.PowDifficulty)
	if err != nil {
		return err
	}

	var (
		registry issuer.Registry = issuer.NewMemoryRegistry()
		limiter  issuer.Limiter  = issuer.NewMemoryLimiter(cfg.IssuerRateLimit, issuerRateWindow)
	)
	if cfg.IssuerRedisAddr != "" {
		rdb, err := issuer.ConnectRedis(ctx, issuer.RedisConfig{Addr: cfg.IssuerRedisAddr, DB: cfg.IssuerRedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		registry = issuer.NewRedisRegistry(rdb, "")
		limiter = issuer.NewRedisLimiter(rdb, cfg.IssuerRateLimit, issuerRateWindow)
	}

	authorizer, err := authorizerFor(cfg)
	if err != nil {
		return err
	}

	server := issuer.NewServer(issuer.Config{
		ContractName: cfg.ContractName,
		AllowRevoke:  cfg.IssuerAllowRevoke,
		Registry:     registry,
		Limiter:      limiter,
		Verifier:     verifier,
		Authorizer:   authorizer,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", server.Handler())

	srv := &http.Server{
		Addr:              cfg.IssuerListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lg := logger.Get()
	lg.Info().
		Str("addr", srv.Addr).
		Str("eligibility", cfg.Eligibility).
		Bool("redis", cfg.IssuerRedisAddr != "").
		Bool("allow_revoke", cfg.IssuerAllowRevoke).
		Msg("starting issuer")
	return listenUntilSignal(srv)
}

func authorizerFor(cfg *config.Config) (issuer.Authorizer, error) {
	if cfg.IssuerAppCredentials == "" {
		lg := logger.Get()
		lg.Warn().Msg("ISSUER_APP_CREDENTIALS not set, keys are registered but not added on chain")
		return issuer.NoopAuthorizer{}, nil
	}

	var password []byte
	if isSealedFile(cfg.IssuerAppCredentials) {
		if err := config.PromptForPassword(); err != nil {
			return nil, err
		}
		p, err := config.GetStorePasswordBytes()
		if err != nil {
			return nil, err
		}
		password = p
		defer clear(password)
	}

	account, err := session.LoadWalletAccount(cfg.IssuerAppCredentials, password)
	if err != nil {
		return nil, fmt.Errorf("failed to load application credentials: %w", err)
	}
	if account.AccountID != cfg.ContractName {
		lg := logger.Get()
		lg.Warn().
			Str("account", account.AccountID).
			Str("contract", cfg.ContractName).
			Msg("application credentials do not belong to the contract account")
	}

	chain := client.NewNearClient(cfg.NodeURL, cfg.RPCTimeout)
	authorizer, err := issuer.NewChainAuthorizer(chain, account.AccountID, account.PrivateKey)
	if err != nil {
		return nil, err
	}
	return authorizer, nil
}
