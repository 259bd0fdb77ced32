package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"memeswap/pkg/chain"
	"memeswap/pkg/types"
)

var (
	testRouterAddr   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testWETHAddr     = common.HexToAddress("0x1000000000000000000000000000000000000002")
	testTokenAddr    = common.HexToAddress("0x1000000000000000000000000000000000000003")
	testTraderAddr   = common.HexToAddress("0x1000000000000000000000000000000000000004")
	testTreasuryAddr = common.HexToAddress("0x1000000000000000000000000000000000000005")
	testManagerAddr  = common.HexToAddress("0x1000000000000000000000000000000000000006")
)

// fakeSigner satisfies chain.Signer; engine code only needs the address
type fakeSigner struct {
	addr common.Address
}

func (s *fakeSigner) Address() common.Address { return s.addr }

func (s *fakeSigner) SignTx(tx *gethtypes.Transaction, chainID *big.Int) (*gethtypes.Transaction, error) {
	return tx, nil
}

// fakeChainID satisfies ChainIDReader
type fakeChainID struct {
	id    *big.Int
	err   error
	calls int
}

func (f *fakeChainID) ChainID(ctx context.Context) (*big.Int, error) {
	f.calls++
	return f.id, f.err
}

// quoteResult is one scripted GetAmountsOut response
type quoteResult struct {
	out *big.Int
	err error
}

// fakeRouter scripts router behavior and records every call
type fakeRouter struct {
	addr    common.Address
	weth    common.Address
	wethErr error

	quotes     []quoteResult
	quoteCalls int

	swapHash common.Hash
	swapErr  error

	buyCalls  int
	sellCalls int

	lastAmountIn *big.Int
	lastMinOut   *big.Int
	lastPath     []common.Address
	lastTo       common.Address
	lastDeadline *big.Int

	events *[]string
}

func (r *fakeRouter) record(event string) {
	if r.events != nil {
		*r.events = append(*r.events, event)
	}
}

func (r *fakeRouter) Address() common.Address { return r.addr }

func (r *fakeRouter) WETH(ctx context.Context) (common.Address, error) {
	if r.wethErr != nil {
		return common.Address{}, r.wethErr
	}
	return r.weth, nil
}

func (r *fakeRouter) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	r.record("quote")
	idx := r.quoteCalls
	r.quoteCalls++
	if idx >= len(r.quotes) {
		idx = len(r.quotes) - 1
	}
	res := r.quotes[idx]
	return res.out, res.err
}

func (r *fakeRouter) swap(amountIn, minOut *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	r.lastAmountIn = amountIn
	r.lastMinOut = minOut
	r.lastPath = path
	r.lastTo = to
	r.lastDeadline = deadline
	if r.swapErr != nil {
		return common.Hash{}, r.swapErr
	}
	return r.swapHash, nil
}

func (r *fakeRouter) SwapExactETHForTokens(ctx context.Context, signer chain.Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	r.record("swap_buy")
	r.buyCalls++
	return r.swap(amountIn, amountOutMin, path, to, deadline)
}

func (r *fakeRouter) SwapExactTokensForETH(ctx context.Context, signer chain.Signer, amountIn, amountOutMin *big.Int, path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	r.record("swap_sell")
	r.sellCalls++
	return r.swap(amountIn, amountOutMin, path, to, deadline)
}

// fakeToken scripts ERC-20 behavior and records every call
type fakeToken struct {
	addr     common.Address
	decimals uint8
	symbol   string
	balance  *big.Int

	allowance      *big.Int
	allowanceErr   error
	allowanceCalls int

	approveHash  common.Hash
	approveErr   error
	approveCalls int

	events *[]string
}

func (t *fakeToken) record(event string) {
	if t.events != nil {
		*t.events = append(*t.events, event)
	}
}

func (t *fakeToken) Address() common.Address { return t.addr }

func (t *fakeToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return t.balance, nil
}

func (t *fakeToken) Decimals(ctx context.Context) (uint8, error) { return t.decimals, nil }

func (t *fakeToken) Symbol(ctx context.Context) (string, error) { return t.symbol, nil }

func (t *fakeToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	t.allowanceCalls++
	if t.allowanceErr != nil {
		return nil, t.allowanceErr
	}
	return t.allowance, nil
}

func (t *fakeToken) Approve(ctx context.Context, signer chain.Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	t.record("approve")
	t.approveCalls++
	if t.approveErr != nil {
		return common.Hash{}, t.approveErr
	}
	// Mirror the on-chain effect so later reads see the new allowance.
	t.allowance = new(big.Int).Set(amount)
	return t.approveHash, nil
}

// fakeWaiter satisfies TxWaiter
type fakeWaiter struct {
	err    error
	calls  int
	events *[]string
}

func (w *fakeWaiter) WaitMined(ctx context.Context, txHash common.Hash) (*gethtypes.Receipt, error) {
	w.calls++
	if w.events != nil {
		*w.events = append(*w.events, "mined")
	}
	if w.err != nil {
		return nil, w.err
	}
	return &gethtypes.Receipt{Status: gethtypes.ReceiptStatusSuccessful}, nil
}

// fakeTransferrer satisfies Transferrer
type fakeTransferrer struct {
	hash   common.Hash
	err    error
	calls  int
	lastTo common.Address
	last   *big.Int
	events *[]string
}

func (f *fakeTransferrer) Transfer(ctx context.Context, signer chain.Signer, to common.Address, amount *big.Int) (common.Hash, error) {
	f.calls++
	f.lastTo = to
	f.last = amount
	if f.events != nil {
		*f.events = append(*f.events, "transfer")
	}
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return f.hash, nil
}

// fakeBackend satisfies BackendClient
type fakeBackend struct {
	recordErr error
	persisted *types.PersistedTrade
	lastTrade *types.TradeRecord

	liquidityErr   error
	liquidityCalls int
	lastLiquidity  *types.LiquidityRequest

	events *[]string
}

func (b *fakeBackend) RecordTrade(ctx context.Context, trade types.TradeRecord) (*types.PersistedTrade, error) {
	b.lastTrade = &trade
	if b.recordErr != nil {
		return nil, b.recordErr
	}
	if b.persisted != nil {
		return b.persisted, nil
	}
	return &types.PersistedTrade{ID: "persisted-1", TradeRecord: trade}, nil
}

func (b *fakeBackend) RequestLiquidity(ctx context.Context, req types.LiquidityRequest) error {
	b.liquidityCalls++
	b.lastLiquidity = &req
	if b.events != nil {
		*b.events = append(*b.events, "backend")
	}
	return b.liquidityErr
}

// noSleep replaces the retry pause and records requested delays
func noSleep(delays *[]string) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d.String())
		}
		return nil
	}
}

// testResolver builds a resolver whose network is already determined
func testResolver(router *fakeRouter) *NetworkResolver {
	table := []NetworkParams{{
		ChainID:         97,
		Name:            "bsc-testnet",
		RouterAddress:   testRouterAddr,
		WrappedBase:     testWETHAddr,
		ExplorerBaseURL: "https://testnet.bscscan.com",
	}}
	return NewNetworkResolver(
		&fakeChainID{id: big.NewInt(97)},
		func(addr common.Address) (Router, error) { return router, nil },
		table,
		zap.NewNop(),
	)
}
