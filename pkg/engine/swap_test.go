package engine

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memeswap/pkg/chain"
	"memeswap/pkg/types"
)

func TestMinAmountOut(t *testing.T) {
	tests := []struct {
		name        string
		amountOut   int64
		slippageBps int64
		want        int64
	}{
		{"two percent slippage", 1_000_000, 200, 980_000},
		{"zero slippage keeps full amount", 1_000_000, 0, 1_000_000},
		{"floors the division", 3, 1, 2},
		{"max slippage", 1_000_000, 9999, 100},
		{"small amount full slippage", 1, 9999, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinAmountOut(big.NewInt(tt.amountOut), tt.slippageBps)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestMinAmountOutNeverExceedsAmountOut(t *testing.T) {
	amounts := []int64{1, 7, 999, 10_000, 123_456_789}
	for _, amount := range amounts {
		for bps := int64(0); bps < 10_000; bps += 97 {
			min := MinAmountOut(big.NewInt(amount), bps)
			assert.LessOrEqual(t, min.Cmp(big.NewInt(amount)), 0,
				"minAmountOut must not exceed amountOut (amount=%d bps=%d)", amount, bps)
		}
	}
}

type swapFixture struct {
	router   *fakeRouter
	token    *fakeToken
	waiter   *fakeWaiter
	executor *SwapExecutor
	now      time.Time
}

// allowanceToken is the token fake the AllowanceManager sees; keeping it
// separate from the record-building token lets tests assert that the buy
// path never reaches the allowance layer at all.
func newSwapFixture(t *testing.T, allowanceToken *fakeToken) *swapFixture {
	t.Helper()

	router := &fakeRouter{
		addr:     testRouterAddr,
		weth:     testWETHAddr,
		quotes:   []quoteResult{{out: big.NewInt(2_000_000)}},
		swapHash: common.HexToHash("0xbeef"),
	}

	token := &fakeToken{addr: testTokenAddr, decimals: 6, symbol: "MEME"}
	waiter := &fakeWaiter{}

	newToken := func(addr common.Address) (Token, error) { return token, nil }
	newAllowanceToken := func(addr common.Address) (Token, error) {
		if allowanceToken == nil {
			t.Fatal("allowance layer reached but no allowance token was expected")
		}
		return allowanceToken, nil
	}

	allowances := NewAllowanceManager(newAllowanceToken, waiter, zap.NewNop())
	quotes := newTestQuoteEngine(router, nil)
	executor := NewSwapExecutor(testResolver(router), router, quotes, allowances, newToken, waiter, zap.NewNop())

	now := time.Unix(1_700_000_000, 0)
	executor.now = func() time.Time { return now }

	return &swapFixture{router: router, token: token, waiter: waiter, executor: executor, now: now}
}

func collectStates(states *[]SwapState) StateObserver {
	return func(s SwapState) { *states = append(*states, s) }
}

func TestExecuteBuySkipsApproving(t *testing.T) {
	fx := newSwapFixture(t, nil)
	signer := &fakeSigner{addr: testTraderAddr}

	var states []SwapState
	record, err := fx.executor.Execute(context.Background(), signer, SwapParams{
		Direction:    types.TradeBuy,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(1e18),
		SlippageBps:  200,
	}, collectStates(&states))
	require.NoError(t, err)

	assert.Equal(t, []SwapState{
		StateIdle, StateQuoting, StateSubmitting, StateAwaitingConfirmation, StateConfirmed,
	}, states, "Approving is elided entirely on the buy path")

	assert.Equal(t, 1, fx.router.buyCalls)
	assert.Equal(t, 0, fx.router.sellCalls)
	assert.Equal(t, []common.Address{testWETHAddr, testTokenAddr}, fx.router.lastPath)
	assert.Equal(t, big.NewInt(980_000), fx.router.lastMinOut)
	assert.Equal(t, testTraderAddr, fx.router.lastTo)

	assert.Equal(t, types.TradeBuy, record.Type)
	assert.Equal(t, "2", record.Amount)
	assert.Equal(t, "1", record.ValueInBaseAsset)
	assert.Equal(t, "0.5", record.Price)
	assert.Equal(t, testTraderAddr.Hex(), record.Trader)
	assert.Equal(t, common.HexToHash("0xbeef").Hex(), record.TxHash)
}

func TestExecuteSellApprovesBeforeSubmitting(t *testing.T) {
	allowanceToken := &fakeToken{
		addr:        testTokenAddr,
		allowance:   big.NewInt(0),
		approveHash: common.HexToHash("0xaaaa"),
	}
	fx := newSwapFixture(t, allowanceToken)
	signer := &fakeSigner{addr: testTraderAddr}

	var states []SwapState
	_, err := fx.executor.Execute(context.Background(), signer, SwapParams{
		Direction:    types.TradeSell,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(5_000_000),
		SlippageBps:  100,
	}, collectStates(&states))
	require.NoError(t, err)

	assert.Equal(t, []SwapState{
		StateIdle, StateQuoting, StateApproving, StateSubmitting, StateAwaitingConfirmation, StateConfirmed,
	}, states, "Approving is never skipped when the allowance is short")

	assert.Equal(t, 1, allowanceToken.approveCalls)
	assert.Equal(t, 0, fx.router.buyCalls)
	assert.Equal(t, 1, fx.router.sellCalls)
	assert.Equal(t, []common.Address{testTokenAddr, testWETHAddr}, fx.router.lastPath)
}

func TestExecuteSellWithSufficientAllowanceSubmitsNoApproval(t *testing.T) {
	allowanceToken := &fakeToken{addr: testTokenAddr, allowance: big.NewInt(1e18)}
	fx := newSwapFixture(t, allowanceToken)

	var states []SwapState
	_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
		Direction:    types.TradeSell,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(5_000_000),
		SlippageBps:  100,
	}, collectStates(&states))
	require.NoError(t, err)

	assert.Contains(t, states, StateApproving, "the state is visited even when it is a no-op")
	assert.Equal(t, 0, allowanceToken.approveCalls)
}

func TestExecuteApproveRejectedNeverReachesSwap(t *testing.T) {
	allowanceToken := &fakeToken{
		addr:       testTokenAddr,
		allowance:  big.NewInt(0),
		approveErr: chain.ErrRejected,
	}
	fx := newSwapFixture(t, allowanceToken)

	var states []SwapState
	_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
		Direction:    types.TradeSell,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(5_000_000),
		SlippageBps:  100,
	}, collectStates(&states))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrApprovalFailed)
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Equal(t, StateRejected, states[len(states)-1])
	assert.Equal(t, 0, fx.router.buyCalls)
	assert.Equal(t, 0, fx.router.sellCalls, "swap step never reached after a rejected approval")
}

func TestExecuteDeadlineIsTwentyMinutes(t *testing.T) {
	fx := newSwapFixture(t, nil)

	_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
		Direction:    types.TradeBuy,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(1e18),
		SlippageBps:  0,
	}, nil)
	require.NoError(t, err)

	want := big.NewInt(fx.now.Unix() + 1200)
	assert.Equal(t, want, fx.router.lastDeadline)
}

func TestExecuteClassifiesSwapRevert(t *testing.T) {
	fx := newSwapFixture(t, nil)
	fx.router.swapErr = errors.New("execution reverted: TransferHelper: TRANSFER_FROM_FAILED")

	var states []SwapState
	_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
		Direction:    types.TradeBuy,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(1e18),
		SlippageBps:  200,
	}, collectStates(&states))
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, StateReverted, states[len(states)-1])
}

func TestExecuteNoPoolSurfacesAfterQuoteBudget(t *testing.T) {
	fx := newSwapFixture(t, nil)
	fx.router.quotes = []quoteResult{{err: errors.New("pair does not exist")}}

	_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
		Direction:    types.TradeBuy,
		TokenAddress: testTokenAddr,
		AmountIn:     big.NewInt(1e18),
		SlippageBps:  200,
	}, nil)

	assert.ErrorIs(t, err, ErrNoLiquidityPool)
	assert.Equal(t, 3, fx.router.quoteCalls)
	assert.Equal(t, 0, fx.router.buyCalls)
}

func TestExecuteRejectsInvalidSlippage(t *testing.T) {
	fx := newSwapFixture(t, nil)

	for _, bps := range []int64{-1, 10_000, 20_000} {
		_, err := fx.executor.Execute(context.Background(), &fakeSigner{addr: testTraderAddr}, SwapParams{
			Direction:    types.TradeBuy,
			TokenAddress: testTokenAddr,
			AmountIn:     big.NewInt(1e18),
			SlippageBps:  bps,
		}, nil)
		assert.Error(t, err, "slippage %d bps must be rejected", bps)
	}
	assert.Equal(t, 0, fx.router.quoteCalls, "validation happens before any network traffic")
}
