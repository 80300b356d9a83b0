package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile groups the network endpoints that differ between environments.
type Profile struct {
	NetworkID    string `yaml:"networkId"`
	NodeURL      string `yaml:"nodeUrl"`
	WalletURL    string `yaml:"walletUrl"`
	HelperURL    string `yaml:"helperUrl"`
	ContractName string `yaml:"contractName"`
}

var profiles = map[string]Profile{
	"test": {
		NetworkID:    "shared-test",
		NodeURL:      "http://127.0.0.1:3030",
		WalletURL:    "http://127.0.0.1:4000/wallet",
		HelperURL:    "http://localhost:3000",
		ContractName: "test.near",
	},
	"dev": {
		NetworkID:    "testnet",
		NodeURL:      "https://rpc.testnet.near.org",
		WalletURL:    "https://wallet.testnet.near.org",
		HelperURL:    "http://localhost:3000",
		ContractName: "dev-1612590188280-2853755",
	},
	"prod": {
		NetworkID:    "mainnet",
		NodeURL:      "https://rpc.mainnet.near.org",
		WalletURL:    "https://wallet.near.org",
		HelperURL:    "https://helper.mainnet.near.org",
		ContractName: "near",
	},
}

// ProfileFor returns the built-in profile for env ("test", "dev", "prod").
func ProfileFor(env string) (Profile, error) {
	if env == "development" {
		env = "dev"
	}
	if env == "production" || env == "mainnet" {
		env = "prod"
	}
	p, ok := profiles[env]
	if !ok {
		return Profile{}, fmt.Errorf("unknown NEAR_ENV %q", env)
	}
	return p, nil
}

// LoadProfileFile reads a YAML profile and lays its non-empty fields over base.
func LoadProfileFile(path string, base Profile) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var override Profile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile file: %w", err)
	}

	if override.NetworkID != "" {
		base.NetworkID = override.NetworkID
	}
	if override.NodeURL != "" {
		base.NodeURL = override.NodeURL
	}
	if override.WalletURL != "" {
		base.WalletURL = override.WalletURL
	}
	if override.HelperURL != "" {
		base.HelperURL = override.HelperURL
	}
	if override.ContractName != "" {
		base.ContractName = override.ContractName
	}
	return base, nil
}
