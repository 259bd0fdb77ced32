package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrRejected is returned by a signer when the user declines to sign. It is
// the only cancellation path once a flow is underway.
var ErrRejected = errors.New("transaction rejected by signer")

// Signer signs transactions for a single account
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeySigner signs with a local hex-encoded private key
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner parses a hex private key (with or without a 0x prefix)
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to get public key")
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKey),
	}, nil
}

// Address returns the account the signer controls
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTx signs the transaction with the EIP-155 signer for the given chain
func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// ConfirmFunc decides whether a prepared transaction may be signed. It is
// shown the recipient and value so the prompt can describe what is about to
// be submitted.
type ConfirmFunc func(to common.Address, value *big.Int) bool

// PromptSigner wraps another signer behind a confirmation prompt. A declined
// prompt surfaces as ErrRejected.
type PromptSigner struct {
	inner   Signer
	confirm ConfirmFunc
}

// NewPromptSigner wraps inner so every signature requires confirmation
func NewPromptSigner(inner Signer, confirm ConfirmFunc) *PromptSigner {
	return &PromptSigner{inner: inner, confirm: confirm}
}

// Address returns the wrapped signer's account
func (s *PromptSigner) Address() common.Address {
	return s.inner.Address()
}

// SignTx asks for confirmation before delegating to the wrapped signer
func (s *PromptSigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	to := common.Address{}
	if tx.To() != nil {
		to = *tx.To()
	}
	if !s.confirm(to, tx.Value()) {
		return nil, ErrRejected
	}
	return s.inner.SignTx(tx, chainID)
}
