package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsettle/internal/auth"
	"github.com/mmynk/splitsettle/internal/metrics"
)

func wrap(interceptors []connect.Interceptor, next connect.UnaryFunc) connect.UnaryFunc {
	for i := len(interceptors) - 1; i >= 0; i-- {
		next = interceptors[i].WrapUnary(next)
	}
	return next
}

func TestServerInterceptors_LogsCaller(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	limiter := NewRateLimiter(RateLimit{RequestsPerMinute: 60, Burst: 5}, nil)

	var seen string
	call := wrap(ServerInterceptors(metrics.New(), jwtManager, limiter),
		func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			seen = GetUserID(ctx)
			return connect.NewResponse(&struct{}{}), nil
		})

	token, err := jwtManager.Generate("alice")
	require.NoError(t, err)
	req := connect.NewRequest(&struct{}{})
	req.Header().Set("Authorization", "Bearer "+token)

	_, err = call(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", seen)
	assert.Contains(t, buf.String(), "user_id=alice")

	// Unauthenticated calls stop before the handler.
	seen = ""
	_, err = call(context.Background(), connect.NewRequest(&struct{}{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	assert.Empty(t, seen)
}
