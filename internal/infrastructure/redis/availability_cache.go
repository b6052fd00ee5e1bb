package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はイベントごとの空席数キャッシュを管理する
// 正は台帳（DB）にあり、キャッシュは読み取りの加速にのみ使う
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// Get はイベントの空席数をキャッシュから取得する
func (c *AvailabilityCache) Get(ctx context.Context, eventID string) (int, error) {
	key := c.availableKey(eventID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// Set はイベントの空席数をキャッシュに保存する
func (c *AvailabilityCache) Set(ctx context.Context, eventID string, available int, ttl time.Duration) error {
	key := c.availableKey(eventID)
	if err := c.client.Set(ctx, key, available, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は台帳を動かした直後に呼び、古い空席数を読ませない
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	key := c.availableKey(eventID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) availableKey(eventID string) string {
	return fmt.Sprintf("event:%s:available", eventID)
}
