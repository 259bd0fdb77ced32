package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"memeswap/pkg/engine"
	"memeswap/pkg/parser"
	"memeswap/pkg/types"
)

var (
	slippageBps int64
	noConfirm   bool
)

var buyCmd = &cobra.Command{
	Use:   "buy <token-address> <amount>",
	Short: "Buy a token with the base asset",
	Long: `Buy a token through the AMM router, spending <amount> of the base asset.

The engine quotes the expected output, applies the slippage bound, submits the
swap with a 20-minute deadline, waits for one confirmation, and records the
trade in the platform ledger.

Examples:
  memeswap buy 0x1234...abcd 0.5
  memeswap buy 0x1234...abcd 0.5 --slippage-bps 300 --yes`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runSwap(cmd, args, types.TradeBuy)
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <token-address> <amount>",
	Short: "Sell a token for the base asset",
	Long: `Sell <amount> of a token through the AMM router.

On the sell path the engine first makes sure the router holds a sufficient
token allowance, approving once with a maximal amount if needed.

Examples:
  memeswap sell 0x1234...abcd 1000
  memeswap sell 0x1234...abcd 1000 --slippage-bps 300`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runSwap(cmd, args, types.TradeSell)
	},
}

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)

	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		c.Flags().Int64Var(&slippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
		c.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	}
}

func runSwap(cmd *cobra.Command, args []string, direction types.TradeType) {
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

	// The buy leg is denominated in the base asset, the sell leg in the token.
	decimals := uint8(18)
	tokenSymbol := ""
	token, err := a.newToken(tokenAddr)
	if err == nil {
		if s, serr := token.Symbol(ctx); serr == nil {
			tokenSymbol = s
		}
		if direction == types.TradeSell {
			if d, derr := token.Decimals(ctx); derr == nil {
				decimals = d
			}
		}
	}

	amountIn, err := parser.ParseUnits(args[1], decimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	bps := slippageBps
	if bps == 0 {
		bps = a.cfg.SlippageBps
	}

	params := engine.SwapParams{
		Direction:    direction,
		TokenAddress: tokenAddr,
		AmountIn:     amountIn,
		SlippageBps:  bps,
	}

	if !jsonOutput {
		displaySwapIntent(a, params, args[1], tokenSymbol)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	observe := func(state engine.SwapState) {
		if jsonOutput {
			return
		}
		switch state {
		case engine.StateQuoting:
			s.Suffix = " Quoting swap..."
			s.Start()
		case engine.StateApproving:
			s.Suffix = " Approving router allowance..."
		case engine.StateSubmitting:
			s.Stop()
		case engine.StateAwaitingConfirmation:
			s.Suffix = " Awaiting confirmation..."
			s.Start()
		default:
			s.Stop()
		}
	}

	record, err := a.swaps.Execute(ctx, a.promptSigner(noConfirm), params, observe)
	s.Stop()

	if err != nil {
		if errors.Is(err, engine.ErrUserRejected) {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
		printError(err)
		printRemediation(err)
		os.Exit(1)
	}

	// Ledger failure never hides the on-chain success.
	persisted := a.ledger.Record(ctx, *record)

	if jsonOutput {
		out := map[string]any{
			"trade":  record,
			"ledger": persisted,
			"tx_url": a.network.ExplorerTxURL(common.HexToHash(record.TxHash)),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	displayTradeRecord(a, record, tokenSymbol, persisted != nil)
}

func displaySwapIntent(a *app, params engine.SwapParams, amount, tokenSymbol string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	if params.Direction == types.TradeBuy {
		color.Green("                      BUY ORDER")
	} else {
		color.Green("                      SELL ORDER")
	}
	fmt.Println(strings.Repeat("=", 60))

	unit := baseAssetSymbol(a.network.Name)
	if params.Direction == types.TradeSell {
		unit = tokenSymbol
	}

	fmt.Printf("\n  Network:   %s\n", a.network.Name)
	fmt.Printf("  Token:     %s\n", color.CyanString(params.TokenAddress.Hex()))
	fmt.Printf("  Amount:    %s %s\n", amount, color.YellowString(unit))
	fmt.Printf("  Slippage:  %d bps\n", params.SlippageBps)
	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayTradeRecord(a *app, record *types.TradeRecord, tokenSymbol string, persisted bool) {
	color.Green("\n✓ Swap confirmed!")
	fmt.Printf("  Type:    %s\n", record.Type)
	fmt.Printf("  Amount:  %s %s\n", record.Amount, color.YellowString(tokenSymbol))
	fmt.Printf("  Value:   %s %s\n", record.ValueInBaseAsset, baseAssetSymbol(a.network.Name))
	fmt.Printf("  Price:   %s\n", record.Price)
	fmt.Printf("  Tx:      %s\n", color.CyanString(record.TxHash))
	fmt.Printf("  Link:    %s\n", a.network.ExplorerTxURL(common.HexToHash(record.TxHash)))

	if !persisted {
		color.Yellow("\nThe trade ledger could not be updated; your swap is on-chain regardless.")
	}
	printSuccess("Done.")
}
