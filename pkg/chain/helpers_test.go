package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// hardhatKey is the first well-known development account key shipped with
// hardhat and anvil. Safe to embed: it holds nothing on any real network.
const (
	hardhatKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// stubBackend scripts node responses and records submitted transactions
type stubBackend struct {
	chainID  *big.Int
	nonce    uint64
	gasPrice *big.Int
	balance  *big.Int

	estimate    uint64
	estimateErr error

	callFn func(call ethereum.CallMsg) ([]byte, error)

	sent    []*types.Transaction
	sendErr error

	receipt    *types.Receipt
	receiptErr error
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		chainID:  big.NewInt(97),
		nonce:    7,
		gasPrice: big.NewInt(5_000_000_000),
		balance:  big.NewInt(1e18),
		estimate: 100_000,
	}
}

func (b *stubBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.chainID, nil
}

func (b *stubBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if b.callFn == nil {
		return nil, nil
	}
	return b.callFn(call)
}

func (b *stubBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *stubBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return b.gasPrice, nil
}

func (b *stubBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return b.estimate, nil
}

func (b *stubBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *stubBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return b.balance, nil
}

func (b *stubBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if b.receiptErr != nil {
		return nil, b.receiptErr
	}
	return b.receipt, nil
}
