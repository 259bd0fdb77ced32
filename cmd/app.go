package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memeswap/config"
	"memeswap/pkg/chain"
	"memeswap/pkg/client"
	"memeswap/pkg/engine"
	"memeswap/pkg/parser"
)

// app wires the engine components for one CLI invocation. The CLI is a
// single-account, single-network session: one signer, one resolved network,
// one serialized operation.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	eth     *ethclient.Client
	sender  *chain.TxSender
	signer  chain.Signer
	session *engine.Session
	network *engine.NetworkConfig

	router   engine.Router
	newToken engine.TokenFactory
	quotes   *engine.QuoteEngine
	swaps    *engine.SwapExecutor
	backend  *client.Backend
	ledger   *engine.TradeLedgerSync
}

// newApp loads configuration, connects to the chain, and resolves the
// session network.
func newApp(ctx context.Context, verbose bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(verbose)
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	sender, err := chain.NewTxSender(ctx, eth)
	if err != nil {
		eth.Close()
		return nil, err
	}

	signer, err := chain.NewKeySigner(cfg.PrivateKey)
	if err != nil {
		eth.Close()
		return nil, err
	}

	newRouter := func(addr common.Address) (engine.Router, error) {
		return chain.NewRouter(addr, eth, sender)
	}
	newToken := func(addr common.Address) (engine.Token, error) {
		return chain.NewToken(addr, eth, sender)
	}

	table, err := networkTable(cfg.Networks)
	if err != nil {
		eth.Close()
		return nil, err
	}

	resolver := engine.NewNetworkResolver(eth, newRouter, table, log)
	allowances := engine.NewAllowanceManager(newToken, sender, log)
	session := engine.NewSession(resolver, allowances, log)

	network, err := resolver.Resolve(ctx)
	if err != nil {
		eth.Close()
		return nil, err
	}

	router, err := newRouter(network.RouterAddress)
	if err != nil {
		eth.Close()
		return nil, err
	}

	quotes := engine.NewQuoteEngine(router, log)
	swaps := engine.NewSwapExecutor(resolver, router, quotes, allowances, newToken, sender, log)
	backend := client.NewBackend(log, cfg.BackendURL, cfg.BackendToken)
	ledger := engine.NewTradeLedgerSync(backend, log)

	return &app{
		cfg:      cfg,
		log:      log,
		eth:      eth,
		sender:   sender,
		signer:   signer,
		session:  session,
		network:  network,
		router:   router,
		newToken: newToken,
		quotes:   quotes,
		swaps:    swaps,
		backend:  backend,
		ledger:   ledger,
	}, nil
}

// close releases the RPC connection and flushes logs
func (a *app) close() {
	_ = a.log.Sync()
	a.eth.Close()
}

// promptSigner wraps the app signer behind a y/N confirmation unless the
// user opted out of prompts.
func (a *app) promptSigner(skipConfirm bool) chain.Signer {
	if skipConfirm || a.cfg.AutoConfirm {
		return a.signer
	}
	return chain.NewPromptSigner(a.signer, func(to common.Address, value *big.Int) bool {
		fmt.Printf("\nAbout to sign a transaction:\n")
		fmt.Printf("  To:     %s\n", to.Hex())
		fmt.Printf("  Value:  %s %s\n", parser.FormatUnits(value, 18), baseAssetSymbol(a.network.Name))
		return confirm("Sign and submit?")
	})
}

// confirm asks a y/N question on stdin
func confirm(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// networkTable converts configured networks into the resolver's table
func networkTable(networks []config.Network) ([]engine.NetworkParams, error) {
	table := make([]engine.NetworkParams, 0, len(networks))
	for _, n := range networks {
		if !common.IsHexAddress(n.RouterAddress) {
			return nil, fmt.Errorf("invalid router address for network %s: %s", n.Name, n.RouterAddress)
		}
		if !common.IsHexAddress(n.WrappedBase) {
			return nil, fmt.Errorf("invalid wrapped base address for network %s: %s", n.Name, n.WrappedBase)
		}
		table = append(table, engine.NetworkParams{
			ChainID:         n.ChainID,
			Name:            n.Name,
			RouterAddress:   common.HexToAddress(n.RouterAddress),
			WrappedBase:     common.HexToAddress(n.WrappedBase),
			ExplorerBaseURL: n.ExplorerBaseURL,
		})
	}
	return table, nil
}

// baseAssetSymbol maps a network name to its gas-token symbol for display
func baseAssetSymbol(networkName string) string {
	if strings.HasPrefix(networkName, "bsc") {
		return "BNB"
	}
	return "ETH"
}

// parseTokenArg validates a token address argument
func parseTokenArg(arg string) (common.Address, error) {
	if !common.IsHexAddress(arg) {
		return common.Address{}, fmt.Errorf("invalid token address: %s", arg)
	}
	return common.HexToAddress(arg), nil
}

// newLogger builds the CLI logger; verbose shows engine debug output
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// remediation returns user guidance for a classified engine error
func remediation(err error) string {
	switch {
	case errors.Is(err, engine.ErrNoLiquidityPool):
		return "This token has no liquidity pool yet. Add liquidity first with: memeswap add-liquidity"
	case errors.Is(err, engine.ErrInsufficientBalance):
		return "Your balance does not cover this trade. Reduce the amount or top up your wallet."
	case errors.Is(err, engine.ErrInsufficientAllowance):
		return "The router allowance is too low. Retry the trade to re-approve."
	case errors.Is(err, engine.ErrUnsupportedNetwork):
		return "Connect to a recognized network (see the networks table in your config)."
	default:
		return ""
	}
}

func printRemediation(err error) {
	if hint := remediation(err); hint != "" {
		color.Yellow("%s\n", hint)
	}
}
