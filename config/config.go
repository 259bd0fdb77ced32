package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Network describes one recognized chain. The engine reads the wrapped
// base-asset address from the router contract at runtime; the value here is
// only the fallback for when that call fails.
type Network struct {
	ChainID         uint64 `mapstructure:"chain_id"`
	Name            string `mapstructure:"name"`
	RouterAddress   string `mapstructure:"router_address"`
	WrappedBase     string `mapstructure:"wrapped_base"`
	ExplorerBaseURL string `mapstructure:"explorer_base_url"`
}

// Config holds the application configuration
type Config struct {
	RPCURL     string
	PrivateKey string

	BackendURL   string
	BackendToken string

	// TreasuryAddress receives the base-asset leg of a liquidity add; the
	// privileged backend account seeds the pool from it.
	TreasuryAddress string
	// LiquidityManagerAddress is the contract the token allowance is granted
	// to before the backend executes the pool-seeding call.
	LiquidityManagerAddress string

	SlippageBps int64
	AutoConfirm bool

	Networks []Network
}

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".memeswap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("backend_url", "https://api.memeforge.fun")
	viper.SetDefault("slippage_bps", 200)
	viper.SetDefault("networks", defaultNetworks())

	// Read from environment variables
	viper.SetEnvPrefix("MEMESWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		RPCURL:                  viper.GetString("rpc_url"),
		PrivateKey:              viper.GetString("private_key"),
		BackendURL:              viper.GetString("backend_url"),
		BackendToken:            viper.GetString("backend_token"),
		TreasuryAddress:         viper.GetString("treasury_address"),
		LiquidityManagerAddress: viper.GetString("liquidity_manager_address"),
		SlippageBps:             viper.GetInt64("slippage_bps"),
		AutoConfirm:             viper.GetBool("auto_confirm"),
	}

	if err := viper.UnmarshalKey("networks", &cfg.Networks); err != nil {
		return nil, fmt.Errorf("invalid networks configuration: %w", err)
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL not found. Please set MEMESWAP_RPC_URL or create a .memeswap.yaml config file")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not found. Please set MEMESWAP_PRIVATE_KEY or create a .memeswap.yaml config file")
	}
	if cfg.SlippageBps < 0 || cfg.SlippageBps >= 10000 {
		return nil, fmt.Errorf("slippage_bps must be in [0, 10000), got %d", cfg.SlippageBps)
	}

	return cfg, nil
}

// defaultNetworks returns the built-in fallback table: one production network
// and one test network. The table is plain configuration so a third network
// can be added from the config file without a code change.
func defaultNetworks() []map[string]any {
	return []map[string]any{
		{
			"chain_id":          uint64(56),
			"name":              "bsc",
			"router_address":    "0x10ED43C718714eb63d5aA57B78B54704E256024E",
			"wrapped_base":      "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
			"explorer_base_url": "https://bscscan.com",
		},
		{
			"chain_id":          uint64(97),
			"name":              "bsc-testnet",
			"router_address":    "0xD99D1c33F9fC3444f8101754aBC46c52416550D1",
			"wrapped_base":      "0xae13d989daC2f0dEbFf460aC112a837C89BAa7cd",
			"explorer_base_url": "https://testnet.bscscan.com",
		},
	}
}
