package ocr

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/nameplate-cli/internal/resilience"
)

// Limited throttles, retries and circuit-breaks a remote Extractor. One
// Limited is shared by every goroutine that calls the same provider.
type Limited struct {
	name    string
	next    Extractor
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// NewLimited wraps next. rps <= 0 disables throttling; maxAttempts <= 0
// keeps the default retry count.
func NewLimited(name string, next Extractor, rps float64, maxAttempts int) *Limited {
	l := &Limited{
		name:    name,
		next:    next,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewBreaker(name, 0, 0),
	}
	if rps > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if maxAttempts > 0 {
		l.retry.MaxAttempts = maxAttempts
	}
	return l
}

// WithBreaker replaces the default breaker.
func (l *Limited) WithBreaker(b *resilience.Breaker) *Limited {
	l.breaker = b
	return l
}

// ExtractText waits for a rate slot before every attempt. Each attempt counts
// against the breaker; once it opens the remaining attempts fail fast.
func (l *Limited) ExtractText(ctx context.Context, path string) (string, error) {
	cfg := l.retry
	cfg.OnRetry = resilience.RetryLogger(l.name, path)

	return resilience.Do(ctx, cfg, func(ctx context.Context) (string, error) {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return "", eris.Wrapf(err, "ocr: %s rate limit", l.name)
			}
		}
		return resilience.Call(ctx, l.breaker, func(ctx context.Context) (string, error) {
			return l.next.ExtractText(ctx, path)
		})
	})
}
