package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)

	pinned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, pinned)

	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, pinned, Now(ctx))
}
