package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a submitted transaction",
	Long: `Look up a transaction by hash and report whether it is pending,
confirmed, or reverted.

Examples:
  memeswap status 0xabc123...`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.close()

	hash := common.HexToHash(args[0])

	tx, isPending, err := a.eth.TransactionByHash(ctx, hash)
	if err != nil {
		printError(fmt.Errorf("failed to get transaction: %w", err))
		os.Exit(1)
	}

	var receipt *gethtypes.Receipt
	if !isPending {
		receipt, err = a.eth.TransactionReceipt(ctx, hash)
		if err != nil {
			printError(fmt.Errorf("failed to get transaction receipt: %w", err))
			os.Exit(1)
		}
	}

	status := "pending"
	if receipt != nil {
		if receipt.Status == gethtypes.ReceiptStatusSuccessful {
			status = "confirmed"
		} else {
			status = "reverted"
		}
	}

	if jsonOutput {
		out := map[string]any{
			"hash":      tx.Hash().Hex(),
			"status":    status,
			"nonce":     tx.Nonce(),
			"gas_price": tx.GasPrice().String(),
			"value":     tx.Value().String(),
			"tx_url":    a.network.ExplorerTxURL(hash),
		}
		if receipt != nil {
			out["block_number"] = receipt.BlockNumber.Uint64()
			out["gas_used"] = receipt.GasUsed
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                 TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Hash:    %s\n", color.CyanString(tx.Hash().Hex()))
	switch status {
	case "confirmed":
		fmt.Printf("  Status:  %s\n", color.GreenString("confirmed"))
	case "reverted":
		fmt.Printf("  Status:  %s\n", color.RedString("reverted"))
	default:
		fmt.Printf("  Status:  %s\n", color.YellowString("pending"))
	}
	if receipt != nil {
		fmt.Printf("  Block:   %d\n", receipt.BlockNumber.Uint64())
		fmt.Printf("  Gas:     %d\n", receipt.GasUsed)
	}
	fmt.Printf("  Link:    %s\n\n", a.network.ExplorerTxURL(hash))
}
