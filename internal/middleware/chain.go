package middleware

import (
	"connectrpc.com/connect"

	"github.com/mmynk/splitsettle/internal/auth"
	"github.com/mmynk/splitsettle/internal/metrics"
)

// ServerInterceptors returns the interceptor chain for the public API,
// outermost first. Metrics see every call, including rejected ones; logging
// runs after authentication so each line carries the caller.
func ServerInterceptors(m *metrics.Metrics, jwtManager *auth.JWTManager, limiter *RateLimiter) []connect.Interceptor {
	return []connect.Interceptor{
		MetricsInterceptor(m),
		RequireAuth(jwtManager),
		LoggingInterceptor(),
		limiter.Interceptor(),
	}
}
