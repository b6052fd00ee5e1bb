package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	redisinfra "github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
)

// availabilityCacheTTL は空席数キャッシュの保持時間
// ミューテーション時の無効化が主で、TTLは取りこぼしの保険
const availabilityCacheTTL = 10 * time.Second

// EventService は公開イベントの読み取りを提供する
// カタログの編集系は外部システムが担うため、ここには読み取りしかない
type EventService struct {
	eventRepo event.Repository
	invRepo   inventory.Repository
	cache     *redisinfra.AvailabilityCache
}

func NewEventService(eventRepo event.Repository, invRepo inventory.Repository, cache *redisinfra.AvailabilityCache) *EventService {
	return &EventService{eventRepo: eventRepo, invRepo: invRepo, cache: cache}
}

// EventDetail はイベントと現在の空席数の組
type EventDetail struct {
	Event          *event.Event
	AvailableSeats int
}

// GetEvent は公開中のイベントを空席数付きで取得する
// 非公開イベントは存在を隠すため NotFound を返す
func (s *EventService) GetEvent(ctx context.Context, id string) (*EventDetail, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished() {
		return nil, event.ErrEventNotFound
	}

	available, err := s.availableSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventDetail{Event: e, AvailableSeats: available}, nil
}

// ListEvents は公開中のイベント一覧を取得する
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.ListPublished(ctx, limit, offset)
}

// availableSeats はキャッシュ優先で空席数を取得し、ミス時は台帳から読んで埋め戻す
func (s *EventService) availableSeats(ctx context.Context, eventID string) (int, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, eventID); err == nil {
			return cached, nil
		} else if !errors.Is(err, redisinfra.ErrCacheMiss) {
			// キャッシュ障害は読み取りを止めない
			logger.Warn("空席数キャッシュの取得に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	available, err := s.invRepo.AvailableSeats(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, eventID, available, availabilityCacheTTL); err != nil {
			logger.Warn("空席数キャッシュの保存に失敗", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return available, nil
}
