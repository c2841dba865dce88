package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Rate limit response headers, the limiter's externally visible contract.
const (
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// RateLimitConfig sets the per-caller budget applied by the middleware.
type RateLimitConfig struct {
	Limit  int64
	Window time.Duration
}

// RateLimiter returns a Huma middleware that admits requests through the
// fixed-window limiter. Admission results are surfaced as
// X-RateLimit-Remaining and X-RateLimit-Reset headers; rejected requests
// receive HTTP 429.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.Limiter,
	cfg RateLimitConfig,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		identity := CallerIdentity(ctx)

		res, err := limiter.Check(ctx.Context(), identity, cfg.Limit, cfg.Window)
		if err != nil {
			// Only misconfiguration reaches here; store outages fail open
			// inside the limiter.
			logger.Error("rate limit misconfigured", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		ctx.SetHeader(headerRemaining, strconv.FormatInt(res.Remaining, 10))
		ctx.SetHeader(headerReset, strconv.FormatInt(res.ResetAt.UnixMilli(), 10))

		if !res.Allowed {
			logger.Warn("rate limit exceeded",
				zap.String("path", ctx.URL().Path),
				zap.String("method", ctx.Method()),
				zap.String("client_ip", clientIP(ctx)),
			)

			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}
