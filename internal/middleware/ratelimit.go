package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/vendor-outreach/internal/metrics"
	"github.com/octobees/vendor-outreach/internal/ratelimit"
)

// RateLimit rejects requests once the caller exhausts its budget in store. Callers are keyed by
// authenticated user id, falling back to the client IP. scope labels the rejection metric.
func RateLimit(store ratelimit.Store, scope string, logger *zap.Logger) echo.MiddlewareFunc {
	if store == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UserIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, err := store.Allow(c.Request().Context(), scope+":"+key)
			if err != nil {
				// Fail open when the store is unreachable.
				logger.Warn("rate limit store unavailable", zap.String("scope", scope), zap.Error(err))
				return next(c)
			}
			if !allowed {
				metrics.RateLimitRejections.WithLabelValues(scope).Inc()
				return abort(c, http.StatusTooManyRequests, scope+" rate limit exceeded")
			}

			return next(c)
		}
	}
}
