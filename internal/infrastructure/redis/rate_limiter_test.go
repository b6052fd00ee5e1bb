package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	t.Run("上限まで許可され超過で拒否される", func(t *testing.T) {
		limiter := NewRateLimiter(client, 3)
		userID := "rl-user-" + uuid.New().String()
		now := time.Now()

		for i := 0; i < 3; i++ {
			allowed, err := limiter.Allow(ctx, userID, now)
			require.NoError(t, err)
			assert.True(t, allowed, "%d回目は許可されるべき", i+1)
		}

		allowed, err := limiter.Allow(ctx, userID, now)
		require.NoError(t, err)
		assert.False(t, allowed, "上限超過は拒否されるべき")
	})

	t.Run("分が変わるとカウンタがリセットされる", func(t *testing.T) {
		limiter := NewRateLimiter(client, 1)
		userID := "rl-user-" + uuid.New().String()
		now := time.Now()

		allowed, err := limiter.Allow(ctx, userID, now)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, userID, now)
		require.NoError(t, err)
		assert.False(t, allowed)

		// 次の分は別キーになる
		allowed, err = limiter.Allow(ctx, userID, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ユーザーごとに独立して数える", func(t *testing.T) {
		limiter := NewRateLimiter(client, 1)
		now := time.Now()

		allowed, err := limiter.Allow(ctx, "rl-user-"+uuid.New().String(), now)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = limiter.Allow(ctx, "rl-user-"+uuid.New().String(), now)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
