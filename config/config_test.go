package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("MEMESWAP_RPC_URL", "https://bsc-testnet.example.org")
	t.Setenv("MEMESWAP_PRIVATE_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
}

func TestLoadFromEnvironment(t *testing.T) {
	setupEnv(t)
	t.Setenv("MEMESWAP_BACKEND_TOKEN", "secret")
	t.Setenv("MEMESWAP_AUTO_CONFIRM", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://bsc-testnet.example.org", cfg.RPCURL)
	assert.Equal(t, "secret", cfg.BackendToken)
	assert.True(t, cfg.AutoConfirm)
}

func TestLoadDefaults(t *testing.T) {
	setupEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.memeforge.fun", cfg.BackendURL)
	assert.Equal(t, int64(200), cfg.SlippageBps)

	require.Len(t, cfg.Networks, 2)
	assert.Equal(t, uint64(56), cfg.Networks[0].ChainID)
	assert.Equal(t, "bsc", cfg.Networks[0].Name)
	assert.Equal(t, uint64(97), cfg.Networks[1].ChainID)
	assert.NotEmpty(t, cfg.Networks[1].RouterAddress)
}

func TestLoadRequiresRPCURL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEMESWAP_PRIVATE_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	_, err := Load()
	assert.ErrorContains(t, err, "RPC URL not found")
}

func TestLoadRequiresPrivateKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEMESWAP_RPC_URL", "https://bsc-testnet.example.org")

	_, err := Load()
	assert.ErrorContains(t, err, "private key not found")
}

func TestLoadRejectsOutOfRangeSlippage(t *testing.T) {
	setupEnv(t)
	t.Setenv("MEMESWAP_SLIPPAGE_BPS", "10000")

	_, err := Load()
	assert.ErrorContains(t, err, "slippage_bps")
}
