// Package parser converts between human-denominated amounts from the command
// line and on-chain integer units.
package parser

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseUnits converts a human-denominated amount string (e.g. "0.5") into
// the token's smallest unit. Digits beyond the token's precision are
// rejected rather than silently truncated.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	return shifted.BigInt(), nil
}

// FormatUnits renders a smallest-unit amount in human units
func FormatUnits(amount *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
