package locator

import (
	"github.com/dynrelay/locator/internal/ratelimit"
	"github.com/dynrelay/locator/internal/wsrelay"
)

// newDefaultPool builds the wsrelay.Pool Resolver/Publisher fall back to
// when the caller supplies no RelayPool of their own.
func newDefaultPool(opts Options) (RelayPool, error) {
	rps := opts.RateLimitRPS
	if rps <= 0 {
		rps = DefaultConfig().RateLimitRPS
	}
	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = DefaultConfig().RateLimitBurst
	}
	pool := wsrelay.NewPool(wsrelay.Config{
		DialTimeout: opts.Timeout,
		Limiter:     ratelimit.NewMapLimiter(rps, burst),
	})
	return pool, nil
}
