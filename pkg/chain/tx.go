package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	// nativeTransferGas is the fixed cost of a plain value transfer
	nativeTransferGas = uint64(21000)
	// fallbackContractGas is used when gas estimation fails
	fallbackContractGas = uint64(300000)
)

// TxSender builds, signs, and submits legacy transactions against a Backend.
// Nonce and gas price are fetched per submission; contract calls are gas
// estimated with a 20% buffer.
type TxSender struct {
	backend Backend
	chainID *big.Int
}

// NewTxSender reads the chain ID once and returns a sender bound to it
func NewTxSender(ctx context.Context, backend Backend) (*TxSender, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return &TxSender{backend: backend, chainID: chainID}, nil
}

// ChainID returns the chain the sender is bound to
func (s *TxSender) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Send submits a signed transaction to `to` carrying `value` and `data` and
// returns its hash. It does not wait for the transaction to be mined.
func (s *TxSender) Send(ctx context.Context, signer Signer, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	from := signer.Address()

	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := nativeTransferGas
	if len(data) > 0 {
		msg := ethereum.CallMsg{From: from, To: &to, Value: value, Data: data}
		estimated, err := s.backend.EstimateGas(ctx, msg)
		if err != nil {
			gasLimit = fallbackContractGas
		} else {
			gasLimit = estimated * 120 / 100
		}
	}

	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signed, err := signer.SignTx(tx, s.chainID)
	if err != nil {
		return common.Hash{}, err
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed.Hash(), nil
}

// Transfer sends a plain base-asset value transfer after checking the sender
// balance covers the amount.
func (s *TxSender) Transfer(ctx context.Context, signer Signer, to common.Address, amount *big.Int) (common.Hash, error) {
	balance, err := s.backend.BalanceAt(ctx, signer.Address(), nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return common.Hash{}, fmt.Errorf("insufficient balance: have %s wei, need %s wei", balance.String(), amount.String())
	}

	return s.Send(ctx, signer, to, amount, nil)
}

// WaitMined waits for one confirmation of the given transaction
func (s *TxSender) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return WaitMined(ctx, s.backend, txHash)
}
