package engine

import (
	"context"

	"go.uber.org/zap"

	"memeswap/pkg/types"
)

// TradeLedgerSync reconciles a locally-optimistic trade record with the
// backend ledger. The blockchain is the authoritative state: a failed ledger
// write is logged and swallowed so it never hides an on-chain success from
// the user. The backend deduplicates by tx hash; each confirmed swap is
// submitted once.
type TradeLedgerSync struct {
	backend BackendClient
	log     *zap.Logger
}

// NewTradeLedgerSync creates a ledger sync over the backend client
func NewTradeLedgerSync(backend BackendClient, log *zap.Logger) *TradeLedgerSync {
	return &TradeLedgerSync{backend: backend, log: log}
}

// Record submits the trade to the backend ledger. On failure it returns nil
// after logging; callers proceed either way.
func (s *TradeLedgerSync) Record(ctx context.Context, trade types.TradeRecord) *types.PersistedTrade {
	persisted, err := s.backend.RecordTrade(ctx, trade)
	if err != nil {
		s.log.Warn("trade ledger write failed, on-chain state is authoritative",
			zap.String("tx", trade.TxHash),
			zap.Error(err))
		return nil
	}

	s.log.Info("trade recorded",
		zap.String("id", persisted.ID),
		zap.String("tx", trade.TxHash))
	return persisted
}
