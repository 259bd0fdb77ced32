package engine

import (
	"errors"
	"strings"

	"memeswap/pkg/chain"
)

// Sentinel kinds for every failure the engine can surface. Callers branch on
// these with errors.Is; the underlying provider error stays attached for
// diagnostics via errors.Unwrap.
var (
	ErrUnsupportedNetwork    = errors.New("unsupported network")
	ErrNoLiquidityPool       = errors.New("no liquidity pool for token")
	ErrApprovalFailed        = errors.New("token approval failed")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUserRejected          = errors.New("rejected by user")
	ErrSwapReverted          = errors.New("swap reverted")
	ErrTransferFailed        = errors.New("base asset transfer failed")
	ErrBackendRequestFailed  = errors.New("backend request failed")
)

// flowError tags an underlying error with one of the sentinel kinds
type flowError struct {
	kind error
	err  error
}

func (e *flowError) Error() string {
	if e.err == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *flowError) Is(target error) bool {
	return target == e.kind
}

func (e *flowError) Unwrap() error {
	return e.err
}

// fail wraps err with the given kind. A nil err yields the bare kind.
func fail(kind, err error) error {
	if err == nil {
		return kind
	}
	return &flowError{kind: kind, err: err}
}

// Substrings seen in provider revert and RPC error messages. The set covers
// geth-style node errors plus the UniswapV2 router/pair require strings.
var classifierRules = []struct {
	kind    error
	matches []string
}{
	{ErrUserRejected, []string{
		"rejected by signer",
		"user rejected",
		"user denied",
	}},
	{ErrInsufficientAllowance, []string{
		"insufficient allowance",
		"transfer amount exceeds allowance",
		"transferhelper: transfer_from_failed",
	}},
	{ErrInsufficientBalance, []string{
		"insufficient funds",
		"insufficient balance",
		"transfer amount exceeds balance",
	}},
	{ErrNoLiquidityPool, []string{
		"insufficient_liquidity",
		"insufficient_output_amount",
	}},
}

// Classify maps a raw provider error onto the engine's taxonomy. Errors that
// already carry a kind pass through unchanged; anything unrecognized from a
// swap submission is a plain revert.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range []error{
		ErrUnsupportedNetwork, ErrNoLiquidityPool, ErrApprovalFailed,
		ErrInsufficientAllowance, ErrInsufficientBalance, ErrUserRejected,
		ErrSwapReverted, ErrTransferFailed, ErrBackendRequestFailed,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	if errors.Is(err, chain.ErrRejected) {
		return fail(ErrUserRejected, err)
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classifierRules {
		for _, m := range rule.matches {
			if strings.Contains(msg, m) {
				return fail(rule.kind, err)
			}
		}
	}

	return fail(ErrSwapReverted, err)
}
