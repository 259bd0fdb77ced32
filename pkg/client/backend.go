// Package client implements the REST collaborator the engine reports to: the
// trade ledger and the privileged liquidity-provisioning trigger.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"memeswap/pkg/types"
)

const requestTimeout = 10 * time.Second

// Backend wraps HTTP communication with the platform backend
type Backend struct {
	log     *zap.Logger
	baseURL string
	token   string
	http    *http.Client
}

// NewBackend constructs a backend client. Token may be empty for anonymous
// deployments.
func NewBackend(log *zap.Logger, baseURL, token string) *Backend {
	return &Backend{
		log:     log,
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// RecordTrade persists a confirmed trade in the backend ledger. The backend
// deduplicates by tx hash, so re-submitting the same record is harmless.
func (b *Backend) RecordTrade(ctx context.Context, trade types.TradeRecord) (*types.PersistedTrade, error) {
	var persisted types.PersistedTrade
	if err := b.postJSON(ctx, "/trades", trade, &persisted); err != nil {
		return nil, fmt.Errorf("failed to record trade: %w", err)
	}
	return &persisted, nil
}

// RequestLiquidity asks the backend's privileged account to execute the
// on-chain liquidity add using the caller's pre-established allowance.
func (b *Backend) RequestLiquidity(ctx context.Context, req types.LiquidityRequest) error {
	payload := map[string]string{
		"request_id":        req.ID,
		"token_address":     req.TokenAddress.Hex(),
		"token_amount":      req.TokenAmount.String(),
		"base_asset_amount": req.BaseAssetAmount.String(),
		"creator_address":   req.CreatorAddress.Hex(),
	}
	if err := b.postJSON(ctx, "/liquidity", payload, nil); err != nil {
		return fmt.Errorf("failed to request liquidity provisioning: %w", err)
	}
	return nil
}

// postJSON performs an authenticated POST request with a JSON body and
// decodes the JSON response into `out` when it is non-nil.
func (b *Backend) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s%s", b.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", b.token))
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		b.log.Warn("backend.non_2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)))
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
