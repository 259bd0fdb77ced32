package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the subset of *ethclient.Client the engine depends on. Tests
// substitute fakes; production code passes a dialed ethclient.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ErrTxReverted indicates a mined transaction with a failed receipt status.
var ErrTxReverted = errors.New("transaction reverted")

// DefaultPollInterval is how often WaitMined polls for a receipt.
const DefaultPollInterval = 3 * time.Second

// WaitMined blocks until the transaction has one confirmation and returns its
// receipt. A receipt with a failed status is returned alongside ErrTxReverted
// so callers can still inspect it.
func WaitMined(ctx context.Context, backend Backend, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w: tx %s", ErrTxReverted, txHash.Hex())
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
