package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TradeType identifies the direction of a swap
type TradeType string

const (
	TradeBuy  TradeType = "BUY"  // base asset in, token out
	TradeSell TradeType = "SELL" // token in, base asset out
)

// TokenDescriptor holds the read-only identity of an ERC-20 token.
// The address is the natural key; decimals and symbol come from the contract.
type TokenDescriptor struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
}

// TradeRecord is the locally-optimistic record of a confirmed swap. It is
// created as soon as the transaction has one confirmation and reconciled with
// the backend ledger afterwards; the backend deduplicates by TxHash.
type TradeRecord struct {
	Type             TradeType `json:"type"`
	TokenAddress     string    `json:"token_address"`
	Amount           string    `json:"amount"`              // token amount, human units
	ValueInBaseAsset string    `json:"value_in_base_asset"` // base-asset amount, human units
	Price            string    `json:"price"`               // base asset per token
	Trader           string    `json:"trader"`
	TxHash           string    `json:"tx_hash"`
	Timestamp        time.Time `json:"timestamp"`
}

// PersistedTrade is a trade record as stored by the backend ledger
type PersistedTrade struct {
	ID string `json:"id"`
	TradeRecord
	CreatedAt time.Time `json:"created_at"`
}

// LiquidityRequest describes one user-initiated liquidity add. The token
// amount is granted as an allowance to the liquidity manager contract and the
// base-asset amount is transferred to the platform treasury; the backend's
// privileged account performs the actual pool seeding.
type LiquidityRequest struct {
	ID              string         `json:"id"`
	TokenAddress    common.Address `json:"token_address"`
	TokenAmount     *big.Int       `json:"token_amount"`
	BaseAssetAmount *big.Int       `json:"base_asset_amount"`
	CreatorAddress  common.Address `json:"creator_address"`
}
