package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"memeswap/pkg/engine"
	"memeswap/pkg/parser"
	"memeswap/pkg/types"
)

var liquidityNoConfirm bool

var liquidityCmd = &cobra.Command{
	Use:   "add-liquidity <token-address> <token-amount> <base-amount>",
	Short: "Seed a liquidity pool for a token",
	Long: `Request liquidity provisioning for a token.

The flow approves the platform liquidity manager to pull <token-amount> of
the token, transfers <base-amount> of the base asset to the platform
treasury, and asks the backend's privileged account to seed the pool. The
command then polls until the new pool answers quotes.

Examples:
  memeswap add-liquidity 0x1234...abcd 1000000 2.5`,
	Args: cobra.ExactArgs(3),
	Run:  runAddLiquidity,
}

func init() {
	rootCmd.AddCommand(liquidityCmd)
	liquidityCmd.Flags().BoolVarP(&liquidityNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runAddLiquidity(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.close()

	if !common.IsHexAddress(a.cfg.TreasuryAddress) {
		printError(fmt.Errorf("treasury_address is not configured"))
		os.Exit(1)
	}
	if !common.IsHexAddress(a.cfg.LiquidityManagerAddress) {
		printError(fmt.Errorf("liquidity_manager_address is not configured"))
		os.Exit(1)
	}

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

	tokenAmount, err := parser.ParseUnits(args[1], tokenDecimals)
	if err != nil {
		printError(fmt.Errorf("invalid token amount: %w", err))
		os.Exit(1)
	}
	baseAmount, err := parser.ParseUnits(args[2], 18)
	if err != nil {
		printError(fmt.Errorf("invalid base asset amount: %w", err))
		os.Exit(1)
	}

	req := types.LiquidityRequest{
		ID:              uuid.New().String(),
		TokenAddress:    tokenAddr,
		TokenAmount:     tokenAmount,
		BaseAssetAmount: baseAmount,
		CreatorAddress:  a.signer.Address(),
	}

	orchestrator := engine.NewLiquidityOrchestrator(
		a.session.Allowances, a.sender, a.sender, a.backend, a.quotes, a.session.Network,
		common.HexToAddress(a.cfg.LiquidityManagerAddress),
		common.HexToAddress(a.cfg.TreasuryAddress),
		a.log,
	)

	displayLiquidityIntent(a, args)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	settled := false
	observe := func(step engine.LiquidityStep) {
		switch step {
		case engine.StepApproving:
			s.Suffix = " Approving liquidity manager..."
			s.Start()
		case engine.StepTransferring:
			s.Suffix = " Transferring base asset to treasury..."
		case engine.StepRequesting:
			s.Suffix = " Requesting pool seeding..."
		case engine.StepSettling:
			s.Suffix = " Waiting for the pool to settle..."
		case engine.StepSettled:
			settled = true
			s.Stop()
		default:
			s.Stop()
		}
	}

	err = orchestrator.AddLiquidity(ctx, a.promptSigner(liquidityNoConfirm), req, observe)
	s.Stop()

	if err != nil {
		if errors.Is(err, engine.ErrUserRejected) {
			fmt.Println("\nLiquidity add cancelled.")
			os.Exit(0)
		}
		printError(err)
		if errors.Is(err, engine.ErrBackendRequestFailed) {
			color.Yellow("Your approval and transfer are settled on-chain; re-run the command to retry the provisioning request.\n")
		}
		os.Exit(1)
	}

	if settled {
		color.Green("\n✓ Pool is live and quotable!")
	} else {
		color.Yellow("\nProvisioning requested. The pool was not quotable yet; check back shortly with: memeswap quote %s 0.01", tokenAddr.Hex())
	}
	printSuccess("Done.")
}

func displayLiquidityIntent(a *app, args []string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                   ADD LIQUIDITY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Network:       %s\n", a.network.Name)
	fmt.Printf("  Token:         %s\n", color.CyanString(args[0]))
	fmt.Printf("  Token amount:  %s\n", args[1])
	fmt.Printf("  Base amount:   %s %s\n", args[2], baseAssetSymbol(a.network.Name))
	fmt.Println("\n" + strings.Repeat("=", 60))
}
