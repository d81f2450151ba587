package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/engine"
	"golang.org/x/time/rate"
)

// throttledOracle delays calls to an oracle so it stays under a
// requests-per-minute budget.
type throttledOracle struct {
	next    engine.Oracle
	limiter *rate.Limiter
}

// WithRateLimit wraps oracle with a limiter allowing requestsPerMinute
// calls, bursting up to the same amount. A non-positive limit returns
// oracle unchanged.
func WithRateLimit(oracle engine.Oracle, requestsPerMinute int) engine.Oracle {
	if requestsPerMinute <= 0 {
		return oracle
	}
	return &throttledOracle{
		next:    oracle,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

// Categorize waits for the limiter before delegating.
func (o *throttledOracle) Categorize(ctx context.Context, tokens []string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter canceled: %w", err)
	}
	return o.next.Categorize(ctx, tokens)
}
