package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Network fields left empty in the environment are filled from the selected profile.
// Note: the store password is prompted at runtime and kept in memory - use GetStorePasswordBytes()
type Config struct {
	Env         string `envconfig:"NEAR_ENV" default:"dev"`
	ProfileFile string `envconfig:"PROFILE_FILE"`

	// the API serves the local credential, keep it off public interfaces
	BindAddr  string `envconfig:"BIND_ADDR" default:"127.0.0.1"`
	Port      string `envconfig:"PORT" default:"8080"`
	DataDir   string `envconfig:"DATA_DIR" default:".guest-wallet"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`

	NetworkID    string `envconfig:"NETWORK_ID"`
	NodeURL      string `envconfig:"NODE_URL"`
	WalletURL    string `envconfig:"WALLET_URL"`
	HelperURL    string `envconfig:"HELPER_URL"`
	ContractName string `envconfig:"CONTRACT_NAME"`
	Gas          uint64 `envconfig:"GAS" default:"300000000000000"`

	StoreEncrypt  bool          `envconfig:"STORE_ENCRYPT" default:"false"`
	IssuerTimeout time.Duration `envconfig:"ISSUER_TIMEOUT" default:"30s"`
	RPCTimeout    time.Duration `envconfig:"RPC_TIMEOUT" default:"30s"`
	ReverifyAfter time.Duration `envconfig:"REVERIFY_AFTER" default:"0s"`
	AllowRevoke   bool          `envconfig:"ALLOW_REVOKE" default:"false"`

	// none | token | jwt | pow
	Eligibility       string `envconfig:"ELIGIBILITY" default:"none"`
	EligibilityToken  string `envconfig:"ELIGIBILITY_TOKEN"`
	EligibilitySecret string `envconfig:"ELIGIBILITY_SECRET"`
	PowDifficulty     int    `envconfig:"POW_DIFFICULTY" default:"20"`

	// reference issuer service
	IssuerBindAddr       string `envconfig:"ISSUER_BIND_ADDR"`
	IssuerPort           string `envconfig:"ISSUER_PORT" default:"3000"`
	IssuerRedisAddr      string `envconfig:"ISSUER_REDIS_ADDR"`
	IssuerRedisDB        int    `envconfig:"ISSUER_REDIS_DB" default:"0"`
	IssuerAllowRevoke    bool   `envconfig:"ISSUER_ALLOW_REVOKE" default:"false"`
	IssuerRateLimit      int    `envconfig:"ISSUER_RATE_LIMIT" default:"5"`
	IssuerAppCredentials string `envconfig:"ISSUER_APP_CREDENTIALS"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables into the global instance.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads environment variables and applies the selected profile.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	profile, err := ProfileFor(c.Env)
	if err != nil {
		return nil, err
	}
	if c.ProfileFile != "" {
		profile, err = LoadProfileFile(c.ProfileFile, profile)
		if err != nil {
			return nil, err
		}
	}
	c.applyProfile(profile)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that envconfig cannot.
func (c *Config) Validate() error {
	if c.NodeURL == "" {
		return errors.New("NODE_URL is empty")
	}
	if c.HelperURL == "" {
		return errors.New("HELPER_URL is empty")
	}
	if c.ContractName == "" {
		return errors.New("CONTRACT_NAME is empty")
	}
	if c.Gas == 0 {
		return errors.New("GAS must be positive")
	}
	switch c.Eligibility {
	case "none", "token", "jwt", "pow":
	default:
		return fmt.Errorf("unknown ELIGIBILITY %q", c.Eligibility)
	}
	if c.Eligibility == "token" && c.EligibilityToken == "" {
		return errors.New("ELIGIBILITY_TOKEN is required for token eligibility")
	}
	if c.Eligibility == "jwt" && c.EligibilitySecret == "" {
		return errors.New("ELIGIBILITY_SECRET is required for jwt eligibility")
	}
	if c.PowDifficulty < 0 || c.PowDifficulty > 32 {
		return errors.New("POW_DIFFICULTY must be between 0 and 32")
	}
	return nil
}

func (c *Config) applyProfile(p Profile) {
	if c.NetworkID == "" {
		c.NetworkID = p.NetworkID
	}
	if c.NodeURL == "" {
		c.NodeURL = p.NodeURL
	}
	if c.WalletURL == "" {
		c.WalletURL = p.WalletURL
	}
	if c.HelperURL == "" {
		c.HelperURL = p.HelperURL
	}
	if c.ContractName == "" {
		c.ContractName = p.ContractName
	}
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// Set replaces the global configuration. Intended for tests and embedding.
func Set(c *Config) {
	cfg = c
}

// ListenAddr returns the host:port the wallet API listens on.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

// IssuerListenAddr returns the host:port the reference issuer listens on.
func (c *Config) IssuerListenAddr() string {
	return net.JoinHostPort(c.IssuerBindAddr, c.IssuerPort)
}

var passwordBytes []byte

// PromptForPassword prompts the user for the store password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the store is opened.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter store password: ")
	if err != nil {
		return err
	}
	passwordBytes = raw
	return nil
}

// ReadPassword prompts on stderr and reads a non-empty password without echo.
// Caller must zero the returned slice after use.
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}

// GetStorePasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetStorePasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
