package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEAR_ENV", "dev")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "testnet", c.NetworkID)
	assert.Equal(t, "https://rpc.testnet.near.org", c.NodeURL)
	assert.Equal(t, "dev-1612590188280-2853755", c.ContractName)
	assert.Equal(t, uint64(300000000000000), c.Gas)
	assert.Equal(t, 30*time.Second, c.IssuerTimeout)
	assert.Equal(t, time.Duration(0), c.ReverifyAfter)
	assert.Equal(t, "none", c.Eligibility)
	assert.False(t, c.AllowRevoke)
}

func TestLoad_ListenAddrDefaultsToLoopback(t *testing.T) {
	t.Setenv("NEAR_ENV", "dev")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", c.ListenAddr())
	assert.Equal(t, ":3000", c.IssuerListenAddr())

	t.Setenv("BIND_ADDR", "0.0.0.0")
	t.Setenv("PORT", "9090")
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", c.ListenAddr())
}

func TestListenAddr_IPv6(t *testing.T) {
	c := &Config{BindAddr: "::1", Port: "8080"}
	assert.Equal(t, "[::1]:8080", c.ListenAddr())
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Setenv("NEAR_ENV", "prod")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", c.NetworkID)
	assert.Equal(t, "https://rpc.mainnet.near.org", c.NodeURL)
}

func TestLoad_EnvOverridesProfile(t *testing.T) {
	t.Setenv("NEAR_ENV", "test")
	t.Setenv("CONTRACT_NAME", "guest-nft.test.near")
	t.Setenv("HELPER_URL", "http://issuer.local")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "guest-nft.test.near", c.ContractName)
	assert.Equal(t, "http://issuer.local", c.HelperURL)
	assert.Equal(t, "shared-test", c.NetworkID)
}

func TestLoad_ProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodeUrl: http://node.local:3030\ncontractName: nft.local\n"), 0600))

	t.Setenv("NEAR_ENV", "dev")
	t.Setenv("PROFILE_FILE", path)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://node.local:3030", c.NodeURL)
	assert.Equal(t, "nft.local", c.ContractName)
	assert.Equal(t, "testnet", c.NetworkID)
}

func TestLoad_UnknownEnv(t *testing.T) {
	t.Setenv("NEAR_ENV", "staging")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EligibilityValidation(t *testing.T) {
	t.Setenv("NEAR_ENV", "dev")
	t.Setenv("ELIGIBILITY", "jwt")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("ELIGIBILITY_SECRET", "s3cret")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "jwt", c.Eligibility)
}

func TestGetPanicsBeforeInit(t *testing.T) {
	Set(nil)
	assert.Panics(t, func() { Get() })
}

func TestGetStorePasswordBytes_NotSet(t *testing.T) {
	passwordBytes = nil
	_, err := GetStorePasswordBytes()
	require.Error(t, err)
}
