// Package engine coordinates the multi-step, signed transaction flows behind
// token swaps and liquidity provisioning: address resolution, allowance
// management, quoting, slippage-bounded swap execution, and reconciliation
// with the backend trade ledger.
package engine

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"

	"memeswap/pkg/chain"
	"memeswap/pkg/types"
)

// Router is the AMM router surface the engine consumes. *chain.Router
// implements it; tests use fakes.
type Router interface {
	Address() common.Address
	WETH(ctx context.Context) (common.Address, error)
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error)
	SwapExactETHForTokens(ctx context.Context, signer chain.Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error)
	SwapExactTokensForETH(ctx context.Context, signer chain.Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error)
}

// Token is the ERC-20 surface the engine consumes. *chain.Token implements it.
type Token interface {
	Address() common.Address
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Decimals(ctx context.Context) (uint8, error)
	Symbol(ctx context.Context) (string, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, signer chain.Signer, spender common.Address, amount *big.Int) (common.Hash, error)
}

// TokenFactory binds a Token at an address
type TokenFactory func(address common.Address) (Token, error)

// TxWaiter blocks until a submitted transaction has one confirmation
type TxWaiter interface {
	WaitMined(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error)
}

// Transferrer submits a plain base-asset value transfer
type Transferrer interface {
	Transfer(ctx context.Context, signer chain.Signer, to common.Address, amount *big.Int) (common.Hash, error)
}

// BackendClient is the REST collaborator surface the engine consumes
type BackendClient interface {
	RecordTrade(ctx context.Context, trade types.TradeRecord) (*types.PersistedTrade, error)
	RequestLiquidity(ctx context.Context, req types.LiquidityRequest) error
}
