package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "memeswap",
	Short: "A CLI for trading and seeding liquidity for meme tokens on an AMM router",
	Long: `memeswap drives the multi-step, signed transaction flows behind the
meme-token launch platform: token approval, AMM quoting, slippage-bounded
swap execution, and liquidity provisioning.

Examples:
  memeswap buy 0xToken... 0.5
  memeswap sell 0xToken... 1000 --slippage-bps 300
  memeswap quote 0xToken... 0.5
  memeswap add-liquidity 0xToken... 1000000 2.5
  memeswap status 0xTxHash...`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
