package engine

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"memeswap/pkg/chain"
)

// MaxApproval is the sentinel amount approved instead of the exact required
// amount, so one approval covers all future operations against the spender.
var MaxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// AllowanceManager makes sure a spender holds a sufficient ERC-20 allowance
// before a pull-based transfer. Confirmed allowances are cached for the
// session; the cache entry is dropped the moment a new approval is submitted
// and only restored once that approval is mined.
type AllowanceManager struct {
	newToken TokenFactory
	waiter   TxWaiter
	log      *zap.Logger

	cache map[allowanceKey]*big.Int
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

// NewAllowanceManager creates an allowance manager with an empty cache
func NewAllowanceManager(newToken TokenFactory, waiter TxWaiter, log *zap.Logger) *AllowanceManager {
	return &AllowanceManager{
		newToken: newToken,
		waiter:   waiter,
		log:      log,
		cache:    make(map[allowanceKey]*big.Int),
	}
}

// EnsureAllowance guarantees spender may pull at least required from the
// owner's token balance. When the current allowance already covers it the
// call is a no-op; otherwise a maximal approve is submitted and awaited.
// A reverted or rejected approval surfaces as ErrApprovalFailed; there is no
// internal retry.
func (m *AllowanceManager) EnsureAllowance(ctx context.Context, signer chain.Signer, tokenAddr, spender common.Address, required *big.Int) error {
	owner := signer.Address()
	key := allowanceKey{token: tokenAddr, owner: owner, spender: spender}

	if cached, ok := m.cache[key]; ok && cached.Cmp(required) >= 0 {
		return nil
	}

	token, err := m.newToken(tokenAddr)
	if err != nil {
		return fail(ErrApprovalFailed, err)
	}

	current, err := token.Allowance(ctx, owner, spender)
	if err != nil {
		return fail(ErrApprovalFailed, err)
	}

	if current.Cmp(required) >= 0 {
		m.cache[key] = current
		return nil
	}

	// Stale from here until the approval confirms.
	delete(m.cache, key)

	txHash, err := token.Approve(ctx, signer, spender, MaxApproval)
	if err != nil {
		// Keep the rejection visible under the approval failure so the UI
		// can treat a declined prompt as benign.
		if errors.Is(err, chain.ErrRejected) {
			return fail(ErrApprovalFailed, fail(ErrUserRejected, err))
		}
		return fail(ErrApprovalFailed, err)
	}

	m.log.Info("approval submitted",
		zap.String("token", tokenAddr.Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("tx", txHash.Hex()))

	if _, err := m.waiter.WaitMined(ctx, txHash); err != nil {
		return fail(ErrApprovalFailed, err)
	}

	m.cache[key] = new(big.Int).Set(MaxApproval)
	return nil
}

// InvalidateAll drops every cached allowance. Called on chain or account
// change signals from the wallet collaborator.
func (m *AllowanceManager) InvalidateAll() {
	m.cache = make(map[allowanceKey]*big.Int)
}
