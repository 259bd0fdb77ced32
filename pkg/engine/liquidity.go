package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"memeswap/pkg/chain"
	"memeswap/pkg/types"
)

const (
	// PoolSettleAttempts bounds how long we poll for the backend-seeded pool
	// to become quotable after a liquidity request.
	PoolSettleAttempts = 10
	// PoolSettleInterval is the fixed pause between poll attempts
	PoolSettleInterval = 3 * time.Second
)

// poolProbeAmount is the tiny base-asset amount used to test whether the
// pool answers quotes yet.
var poolProbeAmount = big.NewInt(1_000_000_000)

// LiquidityStep names one step of the add-liquidity flow for progress
// observers.
type LiquidityStep string

const (
	StepApproving    LiquidityStep = "approving"
	StepTransferring LiquidityStep = "transferring"
	StepRequesting   LiquidityStep = "requesting"
	StepSettling     LiquidityStep = "settling"
	StepSettled      LiquidityStep = "settled"
	StepUnsettled    LiquidityStep = "unsettled"
)

// StepObserver is notified as the liquidity flow advances
type StepObserver func(step LiquidityStep)

// LiquidityOrchestrator drives the add-liquidity flow. The pool-seeding call
// itself is executed server-side by a privileged account that pulls the
// pre-approved tokens, so the client's job is strictly ordered groundwork:
// the allowance must confirm before the value transfer is submitted, and the
// transfer must confirm before the backend is asked to seed the pool.
type LiquidityOrchestrator struct {
	allowances  *AllowanceManager
	transferrer Transferrer
	waiter      TxWaiter
	backend     BackendClient
	quotes      *QuoteEngine
	network     *NetworkResolver

	// liquidityManager is the contract the token allowance is granted to;
	// treasury receives the base-asset leg.
	liquidityManager common.Address
	treasury         common.Address

	settleAttempts int
	settleInterval time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	log            *zap.Logger
}

// NewLiquidityOrchestrator wires the orchestrator over session components
func NewLiquidityOrchestrator(allowances *AllowanceManager, transferrer Transferrer, waiter TxWaiter, backend BackendClient, quotes *QuoteEngine, network *NetworkResolver, liquidityManager, treasury common.Address, log *zap.Logger) *LiquidityOrchestrator {
	return &LiquidityOrchestrator{
		allowances:       allowances,
		transferrer:      transferrer,
		waiter:           waiter,
		backend:          backend,
		quotes:           quotes,
		network:          network,
		liquidityManager: liquidityManager,
		treasury:         treasury,
		settleAttempts:   PoolSettleAttempts,
		settleInterval:   PoolSettleInterval,
		sleep:            sleepCtx,
		log:              log,
	}
}

// AddLiquidity runs the flow: approve the token for the liquidity manager,
// transfer the base-asset leg to the treasury, request provisioning from the
// backend, then poll until the pool answers quotes. A failed poll is not an
// error: the on-chain steps are settled and the backend retries seeding, so
// the flow ends in StepUnsettled and the caller may re-check later.
func (o *LiquidityOrchestrator) AddLiquidity(ctx context.Context, signer chain.Signer, req types.LiquidityRequest, observe StepObserver) error {
	if observe == nil {
		observe = func(LiquidityStep) {}
	}

	observe(StepApproving)
	if err := o.allowances.EnsureAllowance(ctx, signer, req.TokenAddress, o.liquidityManager, req.TokenAmount); err != nil {
		return err
	}

	observe(StepTransferring)
	txHash, err := o.transferrer.Transfer(ctx, signer, o.treasury, req.BaseAssetAmount)
	if err != nil {
		return fail(ErrTransferFailed, err)
	}
	if _, err := o.waiter.WaitMined(ctx, txHash); err != nil {
		return fail(ErrTransferFailed, err)
	}

	o.log.Info("liquidity funds transferred",
		zap.String("request_id", req.ID),
		zap.String("token", req.TokenAddress.Hex()),
		zap.String("tx", txHash.Hex()))

	observe(StepRequesting)
	if err := o.backend.RequestLiquidity(ctx, req); err != nil {
		// The allowance and transfer remain valid on-chain; only the
		// provisioning trigger needs a retry.
		return fail(ErrBackendRequestFailed, err)
	}

	observe(StepSettling)
	if o.waitForPool(ctx, req.TokenAddress) {
		observe(StepSettled)
	} else {
		o.log.Warn("pool not quotable after settle budget, backend may still be seeding",
			zap.String("request_id", req.ID),
			zap.String("token", req.TokenAddress.Hex()))
		observe(StepUnsettled)
	}

	return nil
}

// waitForPool polls the router until the new pool answers a probe quote or
// the attempt budget runs out.
func (o *LiquidityOrchestrator) waitForPool(ctx context.Context, token common.Address) bool {
	netCfg, err := o.network.Resolve(ctx)
	if err != nil {
		return false
	}
	path := []common.Address{netCfg.BaseAssetAddress, token}

	for attempt := 1; attempt <= o.settleAttempts; attempt++ {
		if attempt > 1 {
			if err := o.sleep(ctx, o.settleInterval); err != nil {
				return false
			}
		}
		if err := o.quotes.ProbePool(ctx, poolProbeAmount, path); err == nil {
			return true
		}
	}
	return false
}
