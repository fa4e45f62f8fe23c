package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/request"
)

const defaultRate = "100-M"

// RateLimit limits requests per client IP using ulule/limiter counters in Redis.
// rate uses the limiter format, e.g. "100-M" or "5-S".
func RateLimit(client *redis.Client, rate, keyPrefix string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = defaultRate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit %q: %w", rate, err)
	}
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: keyPrefix + ":ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}
	return newRateLimitHandler(limiter.New(store, parsed), logger), nil
}

func newRateLimitHandler(instance *limiter.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	mw := stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondErrorJSON(w, r, http.StatusTooManyRequests, "Rate limit exceeded", logger)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("rate_limit_store_failed", zap.Error(err))
			respondErrorJSON(w, r, http.StatusServiceUnavailable, "Rate limiter unavailable", logger)
		}),
	)
	return mw.Handler
}
