package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	// QuoteAttempts bounds how many times a quote is tried before giving up
	QuoteAttempts = 3
	// QuoteRetryDelay is the fixed pause between attempts. No backoff: the
	// budget is chosen for a bounded worst case of about four seconds.
	QuoteRetryDelay = 2 * time.Second
)

// Quote is the expected output for a given input along a path. Quotes are
// ephemeral: one is computed immediately before each swap submission and
// never persisted.
type Quote struct {
	AmountIn  *big.Int
	Path      []common.Address
	AmountOut *big.Int
}

// QuoteEngine queries the AMM router for expected output amounts. A pool
// created moments ago may not be visible to a read served from stale node
// state yet, so failures are retried on a fixed, bounded schedule.
type QuoteEngine struct {
	router   Router
	attempts int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger
}

// NewQuoteEngine creates a quote engine with the default retry budget
func NewQuoteEngine(router Router, log *zap.Logger) *QuoteEngine {
	return &QuoteEngine{
		router:   router,
		attempts: QuoteAttempts,
		delay:    QuoteRetryDelay,
		sleep:    sleepCtx,
		log:      log,
	}
}

// GetQuote returns the expected output amount for amountIn along path. After
// exhausting the retry budget it fails with ErrNoLiquidityPool carrying the
// last underlying error.
func (q *QuoteEngine) GetQuote(ctx context.Context, amountIn *big.Int, path []common.Address) (*Quote, error) {
	var lastErr error

	for attempt := 1; attempt <= q.attempts; attempt++ {
		if attempt > 1 {
			if err := q.sleep(ctx, q.delay); err != nil {
				return nil, err
			}
		}

		amountOut, err := q.router.GetAmountsOut(ctx, amountIn, path)
		if err == nil {
			return &Quote{AmountIn: amountIn, Path: path, AmountOut: amountOut}, nil
		}

		lastErr = err
		q.log.Debug("quote attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("budget", q.attempts),
			zap.Error(err))
	}

	return nil, fail(ErrNoLiquidityPool, lastErr)
}

// ProbePool makes a single quote attempt, no retries. Used when polling for a
// pool that is expected to appear.
func (q *QuoteEngine) ProbePool(ctx context.Context, amountIn *big.Int, path []common.Address) error {
	_, err := q.router.GetAmountsOut(ctx, amountIn, path)
	return err
}

// sleepCtx sleeps for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
