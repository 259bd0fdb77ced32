package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"memeswap/pkg/engine"
	"memeswap/pkg/parser"
	"memeswap/pkg/types"
)

var quoteSell bool

var quoteCmd = &cobra.Command{
	Use:   "quote <token-address> <amount>",
	Short: "Quote a swap without executing it",
	Long: `Ask the AMM router for the expected output of a swap.

By default the quote is for a buy (base asset in). Use --sell for the token-in
direction.

Examples:
  memeswap quote 0x1234...abcd 0.5
  memeswap quote 0x1234...abcd 1000 --sell`,
	Args: cobra.ExactArgs(2),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().BoolVar(&quoteSell, "sell", false, "Quote the token-in direction")
}

func runQuote(cmd *cobra.Command, args []string) {
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
	tokenDecimals, err := token.Decimals(ctx)
	if err != nil {
		printError(fmt.Errorf("failed to read token decimals: %w", err))
		os.Exit(1)
	}
	tokenSymbol, _ := token.Symbol(ctx)

	direction := types.TradeBuy
	inDecimals, outDecimals := uint8(18), tokenDecimals
	inSymbol, outSymbol := baseAssetSymbol(a.network.Name), tokenSymbol
	path := []common.Address{a.network.BaseAssetAddress, tokenAddr}
	if quoteSell {
		direction = types.TradeSell
		inDecimals, outDecimals = tokenDecimals, uint8(18)
		inSymbol, outSymbol = tokenSymbol, baseAssetSymbol(a.network.Name)
		path = []common.Address{tokenAddr, a.network.BaseAssetAddress}
	}

	amountIn, err := parser.ParseUnits(args[1], inDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	quote, err := a.quotes.GetQuote(ctx, amountIn, path)
	s.Stop()

	if err != nil {
		printError(err)
		printRemediation(err)
		os.Exit(1)
	}

	minOut := engine.MinAmountOut(quote.AmountOut, a.cfg.SlippageBps)

	if jsonOutput {
		out := map[string]any{
			"direction":      direction,
			"token_address":  tokenAddr.Hex(),
			"amount_in":      quote.AmountIn.String(),
			"amount_out":     quote.AmountOut.String(),
			"min_amount_out": minOut.String(),
			"slippage_bps":   a.cfg.SlippageBps,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("\n  In:       %s %s\n", args[1], color.YellowString(inSymbol))
	fmt.Printf("  Out:      ~%s %s\n", parser.FormatUnits(quote.AmountOut, outDecimals), color.YellowString(outSymbol))
	fmt.Printf("  Min out:  %s %s (%d bps slippage)\n\n",
		parser.FormatUnits(minOut, outDecimals), outSymbol, a.cfg.SlippageBps)
}
