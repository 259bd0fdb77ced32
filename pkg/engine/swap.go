package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memeswap/pkg/chain"
	"memeswap/pkg/types"
)

const (
	// SwapDeadlineSeconds bounds how long a pending swap may wait before the
	// router contract itself rejects it.
	SwapDeadlineSeconds = 1200
	// BpsDenominator is the basis-point scale for slippage math
	BpsDenominator = 10000

	baseAssetDecimals = 18
)

// SwapState names one step of a swap attempt. Every attempt walks the states
// in order; Approving is elided entirely on the buy path because sending the
// base asset needs no allowance.
type SwapState string

const (
	StateIdle                 SwapState = "idle"
	StateQuoting              SwapState = "quoting"
	StateApproving            SwapState = "approving"
	StateSubmitting           SwapState = "submitting"
	StateAwaitingConfirmation SwapState = "awaiting_confirmation"
	StateConfirmed            SwapState = "confirmed"
	StateReverted             SwapState = "reverted"
	StateRejected             SwapState = "rejected"
)

// StateObserver is notified on every state transition, letting the caller
// render progress deterministically.
type StateObserver func(state SwapState)

// SwapParams is the caller-facing description of one swap. AmountIn is in
// wei of the base asset for a buy and in the token's smallest unit for a
// sell.
type SwapParams struct {
	Direction    types.TradeType
	TokenAddress common.Address
	AmountIn     *big.Int
	SlippageBps  int64
}

// swapRequest is the fully-resolved submission, constructed fresh per attempt
type swapRequest struct {
	direction    types.TradeType
	amountIn     *big.Int
	minAmountOut *big.Int
	slippageBps  int64
	deadline     *big.Int
	path         []common.Address
}

// SwapExecutor drives a single swap attempt through the state machine,
// classifying every failure into the engine taxonomy so the caller can give
// remediation guidance specific to the cause.
type SwapExecutor struct {
	network    *NetworkResolver
	router     Router
	quotes     *QuoteEngine
	allowances *AllowanceManager
	newToken   TokenFactory
	waiter     TxWaiter
	now        func() time.Time
	log        *zap.Logger
}

// NewSwapExecutor wires a swap executor over session components
func NewSwapExecutor(network *NetworkResolver, router Router, quotes *QuoteEngine, allowances *AllowanceManager, newToken TokenFactory, waiter TxWaiter, log *zap.Logger) *SwapExecutor {
	return &SwapExecutor{
		network:    network,
		router:     router,
		quotes:     quotes,
		allowances: allowances,
		newToken:   newToken,
		waiter:     waiter,
		now:        time.Now,
		log:        log,
	}
}

// MinAmountOut applies the slippage bound to a quoted output amount using
// integer arithmetic: floor(amountOut * (10000 - slippageBps) / 10000).
func MinAmountOut(amountOut *big.Int, slippageBps int64) *big.Int {
	factor := big.NewInt(BpsDenominator - slippageBps)
	min := new(big.Int).Mul(amountOut, factor)
	return min.Div(min, big.NewInt(BpsDenominator))
}

// Execute runs one swap attempt to a terminal state and returns the
// locally-optimistic trade record on confirmation. Persisting the record to
// the backend ledger is the caller's concern.
func (e *SwapExecutor) Execute(ctx context.Context, signer chain.Signer, params SwapParams, observe StateObserver) (*types.TradeRecord, error) {
	if observe == nil {
		observe = func(SwapState) {}
	}
	if params.SlippageBps < 0 || params.SlippageBps >= BpsDenominator {
		return nil, fmt.Errorf("slippage bps must be in [0, %d), got %d", BpsDenominator, params.SlippageBps)
	}

	record, err := e.execute(ctx, signer, params, observe)
	if err != nil {
		err = Classify(err)
		if failState(err) == StateRejected {
			observe(StateRejected)
		} else {
			observe(StateReverted)
		}
		return nil, err
	}

	observe(StateConfirmed)
	return record, nil
}

func (e *SwapExecutor) execute(ctx context.Context, signer chain.Signer, params SwapParams, observe StateObserver) (*types.TradeRecord, error) {
	observe(StateIdle)

	netCfg, err := e.network.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	path, err := swapPath(params.Direction, netCfg.BaseAssetAddress, params.TokenAddress)
	if err != nil {
		return nil, err
	}

	observe(StateQuoting)
	quote, err := e.quotes.GetQuote(ctx, params.AmountIn, path)
	if err != nil {
		return nil, err
	}

	if params.Direction == types.TradeSell {
		observe(StateApproving)
		if err := e.allowances.EnsureAllowance(ctx, signer, params.TokenAddress, e.router.Address(), params.AmountIn); err != nil {
			return nil, err
		}
	}

	req := swapRequest{
		direction:    params.Direction,
		amountIn:     params.AmountIn,
		minAmountOut: MinAmountOut(quote.AmountOut, params.SlippageBps),
		slippageBps:  params.SlippageBps,
		deadline:     big.NewInt(e.now().Unix() + SwapDeadlineSeconds),
		path:         path,
	}

	observe(StateSubmitting)
	txHash, err := e.submit(ctx, signer, req)
	if err != nil {
		return nil, err
	}

	e.log.Info("swap submitted",
		zap.String("direction", string(req.direction)),
		zap.String("token", params.TokenAddress.Hex()),
		zap.String("amount_in", req.amountIn.String()),
		zap.String("min_amount_out", req.minAmountOut.String()),
		zap.String("tx", txHash.Hex()))

	observe(StateAwaitingConfirmation)
	if _, err := e.waiter.WaitMined(ctx, txHash); err != nil {
		return nil, err
	}

	return e.buildRecord(ctx, signer, params, quote, txHash)
}

// submit issues the directional router call for the request
func (e *SwapExecutor) submit(ctx context.Context, signer chain.Signer, req swapRequest) (common.Hash, error) {
	switch req.direction {
	case types.TradeBuy:
		return e.router.SwapExactETHForTokens(ctx, signer, req.amountIn, req.minAmountOut, req.path, signer.Address(), req.deadline)
	case types.TradeSell:
		return e.router.SwapExactTokensForETH(ctx, signer, req.amountIn, req.minAmountOut, req.path, signer.Address(), req.deadline)
	default:
		return common.Hash{}, fmt.Errorf("unknown trade direction: %s", req.direction)
	}
}

// buildRecord converts the confirmed swap into a trade record in human units.
// Amounts are the quoted ones; the backend reconciles against on-chain truth.
func (e *SwapExecutor) buildRecord(ctx context.Context, signer chain.Signer, params SwapParams, quote *Quote, txHash common.Hash) (*types.TradeRecord, error) {
	token, err := e.newToken(params.TokenAddress)
	if err != nil {
		return nil, err
	}
	tokenDecimals, err := token.Decimals(ctx)
	if err != nil {
		return nil, err
	}

	var tokenWei, baseWei *big.Int
	if params.Direction == types.TradeBuy {
		baseWei, tokenWei = params.AmountIn, quote.AmountOut
	} else {
		tokenWei, baseWei = params.AmountIn, quote.AmountOut
	}

	tokenAmount := decimal.NewFromBigInt(tokenWei, -int32(tokenDecimals))
	baseAmount := decimal.NewFromBigInt(baseWei, -baseAssetDecimals)

	price := decimal.Zero
	if !tokenAmount.IsZero() {
		price = baseAmount.Div(tokenAmount)
	}

	return &types.TradeRecord{
		Type:             params.Direction,
		TokenAddress:     params.TokenAddress.Hex(),
		Amount:           tokenAmount.String(),
		ValueInBaseAsset: baseAmount.String(),
		Price:            price.String(),
		Trader:           signer.Address().Hex(),
		TxHash:           txHash.Hex(),
		Timestamp:        e.now().UTC(),
	}, nil
}

// swapPath builds the ordered token path for the direction
func swapPath(direction types.TradeType, baseAsset, token common.Address) ([]common.Address, error) {
	switch direction {
	case types.TradeBuy:
		return []common.Address{baseAsset, token}, nil
	case types.TradeSell:
		return []common.Address{token, baseAsset}, nil
	default:
		return nil, fmt.Errorf("unknown trade direction: %s", direction)
	}
}

// failState picks the terminal state for a classified error
func failState(err error) SwapState {
	if err == nil {
		return StateConfirmed
	}
	if errors.Is(err, ErrUserRejected) {
		return StateRejected
	}
	return StateReverted
}
