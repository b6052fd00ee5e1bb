package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter はユーザー単位の分間リクエスト数を制限する
// 分単位のキーを INCR し、初回インクリメント時に1分のTTLを設定する
type RateLimiter struct {
	client *redis.Client
	limit  int
}

// NewRateLimiter は新しいRateLimiterを作成する
func NewRateLimiter(client *redis.Client, limit int) *RateLimiter {
	return &RateLimiter{client: client, limit: limit}
}

// Allow はユーザーの今分のリクエストが上限内かを返す
func (l *RateLimiter) Allow(ctx context.Context, userID string, now time.Time) (bool, error) {
	key := fmt.Sprintf("rl:user:%s:%s", userID, now.Format("200601021504"))

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("レート制限カウンタの更新に失敗: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, fmt.Errorf("レート制限キーのTTL設定に失敗: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}
