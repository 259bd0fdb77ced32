package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"memeswap/pkg/parser"
)

var tokenCmd = &cobra.Command{
	Use:   "token <token-address>",
	Short: "Show a token's on-chain details",
	Long: `Read a token's symbol, decimals, your balance, and the allowance
currently granted to the AMM router.

Examples:
  memeswap token 0x1234...abcd`,
	Args: cobra.ExactArgs(1),
	Run:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.close()

	tokenAddr, err := parseTokenArg(args[0])
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	token, err := a.newToken(tokenAddr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	symbol, err := token.Symbol(ctx)
	if err != nil {
		printError(fmt.Errorf("failed to read token symbol: %w", err))
		os.Exit(1)
	}
	decimals, err := token.Decimals(ctx)
	if err != nil {
		printError(fmt.Errorf("failed to read token decimals: %w", err))
		os.Exit(1)
	}
	balance, err := token.BalanceOf(ctx, a.signer.Address())
	if err != nil {
		printError(fmt.Errorf("failed to read token balance: %w", err))
		os.Exit(1)
	}
	routerAllowance, err := token.Allowance(ctx, a.signer.Address(), a.network.RouterAddress)
	if err != nil {
		printError(fmt.Errorf("failed to read router allowance: %w", err))
		os.Exit(1)
	}

	if jsonOutput {
		out := map[string]any{
			"address":          tokenAddr.Hex(),
			"symbol":           symbol,
			"decimals":         decimals,
			"balance":          balance.String(),
			"router_allowance": routerAllowance.String(),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     TOKEN INFO")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Address:          %s\n", color.CyanString(tokenAddr.Hex()))
	fmt.Printf("  Symbol:           %s\n", color.YellowString(symbol))
	fmt.Printf("  Decimals:         %d\n", decimals)
	fmt.Printf("  Your balance:     %s %s\n", parser.FormatUnits(balance, decimals), symbol)
	fmt.Printf("  Router allowance: %s %s\n\n", parser.FormatUnits(routerAllowance, decimals), symbol)
}
