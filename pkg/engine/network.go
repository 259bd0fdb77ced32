package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// NetworkConfig holds the chain-dependent addresses a session operates with.
// Immutable once resolved; re-resolved after a chain-change invalidation.
type NetworkConfig struct {
	ChainID          *big.Int
	Name             string
	RouterAddress    common.Address
	BaseAssetAddress common.Address
	ExplorerBaseURL  string
}

// ExplorerTxURL returns the explorer link for a transaction hash
func (c *NetworkConfig) ExplorerTxURL(txHash common.Hash) string {
	return fmt.Sprintf("%s/tx/%s", c.ExplorerBaseURL, txHash.Hex())
}

// NetworkParams is one row of the recognized-network table. WrappedBase is
// only consulted when the router's own WETH read fails.
type NetworkParams struct {
	ChainID         uint64
	Name            string
	RouterAddress   common.Address
	WrappedBase     common.Address
	ExplorerBaseURL string
}

// ChainIDReader reports the chain the wallet collaborator is connected to
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// RouterFactory binds a Router at an address
type RouterFactory func(address common.Address) (Router, error)

// NetworkResolver resolves the session NetworkConfig. The router contract is
// the source of truth for the base-asset wrapper address; the static table is
// the fallback, and chain IDs absent from the table are rejected.
type NetworkResolver struct {
	chain     ChainIDReader
	newRouter RouterFactory
	table     []NetworkParams
	log       *zap.Logger

	cached *NetworkConfig
}

// NewNetworkResolver creates a resolver over the given network table
func NewNetworkResolver(chain ChainIDReader, newRouter RouterFactory, table []NetworkParams, log *zap.Logger) *NetworkResolver {
	return &NetworkResolver{
		chain:     chain,
		newRouter: newRouter,
		table:     table,
		log:       log,
	}
}

// Resolve returns the session network config, reading it on first use and
// serving the cached copy afterwards.
func (r *NetworkResolver) Resolve(ctx context.Context) (*NetworkConfig, error) {
	if r.cached != nil {
		return r.cached, nil
	}

	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	params, ok := r.lookup(chainID.Uint64())
	if !ok {
		return nil, fail(ErrUnsupportedNetwork, fmt.Errorf("chain id %s", chainID.String()))
	}

	cfg := &NetworkConfig{
		ChainID:         chainID,
		Name:            params.Name,
		RouterAddress:   params.RouterAddress,
		ExplorerBaseURL: params.ExplorerBaseURL,
	}

	cfg.BaseAssetAddress = r.baseAsset(ctx, params)

	r.cached = cfg
	return cfg, nil
}

// baseAsset reads the wrapper address from the router, falling back to the
// table entry when the contract call fails.
func (r *NetworkResolver) baseAsset(ctx context.Context, params NetworkParams) common.Address {
	router, err := r.newRouter(params.RouterAddress)
	if err == nil {
		weth, werr := router.WETH(ctx)
		if werr == nil {
			return weth
		}
		err = werr
	}

	r.log.Warn("router base asset read failed, using fallback table",
		zap.String("network", params.Name),
		zap.String("fallback", params.WrappedBase.Hex()),
		zap.Error(err))
	return params.WrappedBase
}

// Invalidate drops the cached config so the next Resolve re-reads the chain
func (r *NetworkResolver) Invalidate() {
	r.cached = nil
}

func (r *NetworkResolver) lookup(chainID uint64) (NetworkParams, bool) {
	for _, params := range r.table {
		if params.ChainID == chainID {
			return params, true
		}
	}
	return NetworkParams{}, false
}
