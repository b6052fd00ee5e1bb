package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/config"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/metrics"
)

const (
	lockMaxRetries = 3
	lockRetryDelay = 50 * time.Millisecond
)

// HoldService は座席ホールドの作成と照会を提供する
// 空席検証と確保数加算はリポジトリ側で不可分に行われるため、
// 分散ロックとレート制限はアプリ層の前段ガードとして乗せている
type HoldService struct {
	holdRepo    hold.Repository
	eventRepo   event.Repository
	invRepo     inventory.Repository
	txManager   transaction.Manager
	lockManager *redisinfra.LockManager
	rateLimiter *redisinfra.RateLimiter
	cache       *redisinfra.AvailabilityCache
	metrics     *metrics.Metrics
	cfg         config.HoldConfig
}

// NewHoldService は新しいHoldServiceを作成する
// lockManager / rateLimiter / cache / metrics は nil 可（その機能を無効化する）
func NewHoldService(
	holdRepo hold.Repository,
	eventRepo event.Repository,
	invRepo inventory.Repository,
	txManager transaction.Manager,
	lockManager *redisinfra.LockManager,
	rateLimiter *redisinfra.RateLimiter,
	cache *redisinfra.AvailabilityCache,
	m *metrics.Metrics,
	cfg config.HoldConfig,
) *HoldService {
	return &HoldService{
		holdRepo:    holdRepo,
		eventRepo:   eventRepo,
		invRepo:     invRepo,
		txManager:   txManager,
		lockManager: lockManager,
		rateLimiter: rateLimiter,
		cache:       cache,
		metrics:     m,
		cfg:         cfg,
	}
}

// CreateHold は座席を仮押さえする
// 成功時は TTL 付きの hold 状態のホールドを返す
func (s *HoldService) CreateHold(ctx context.Context, eventID, userID string, quantity int) (*hold.Hold, error) {
	if quantity <= 0 {
		return nil, hold.ErrInvalidQuantity
	}

	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished() {
		// 非公開イベントは存在しないものとして扱う
		return nil, event.ErrEventNotFound
	}

	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.Allow(ctx, userID, time.Now())
		if err != nil {
			// レート制限の障害でホールド作成を止めない（フェイルオープン）
			logger.Warn("レート制限の判定に失敗", zap.String("user_id", userID), zap.Error(err))
		} else if !allowed {
			s.countHold("rate_limited")
			return nil, hold.ErrRateLimited
		}
	}

	if s.lockManager != nil {
		lock, err := s.acquireEventLock(ctx, eventID)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countHold("error")
				return nil, hold.ErrEventBusy
			}
			s.countHold("error")
			return nil, err
		}
		defer s.releaseEventLock(lock)
	}

	h := hold.NewHold(eventID, userID, quantity, s.cfg.TTL)
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if err := s.reserveAndCreate(ctx, h); err != nil {
		var insufficient *inventory.InsufficientError
		if errors.As(err, &insufficient) {
			s.countHold("insufficient")
		} else {
			s.countHold("error")
		}
		return nil, err
	}

	s.invalidateCache(ctx, eventID)
	s.countHold("success")

	logger.Info("ホールドを作成しました",
		zap.String("hold_id", h.ID),
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.Int("quantity", quantity),
	)
	return h, nil
}

// reserveAndCreate は在庫確保とホールド作成を同一トランザクションで行う
func (s *HoldService) reserveAndCreate(ctx context.Context, h *hold.Hold) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.invRepo.Reserve(ctx, tx, h.EventID, h.Quantity); err != nil {
		return err
	}
	if err := s.holdRepo.Create(ctx, tx, h); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションコミットに失敗: %w", err)
	}
	return nil
}

// GetHold はホールドを取得する（所有者のみ）
func (s *HoldService) GetHold(ctx context.Context, holdID, userID string) (*hold.Hold, error) {
	h, err := s.holdRepo.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if !h.IsOwnedBy(userID) {
		return nil, hold.ErrHoldForbidden
	}
	return h, nil
}

// ListUserHolds はユーザーのホールド一覧を作成日時の降順で取得する
func (s *HoldService) ListUserHolds(ctx context.Context, userID string, filter hold.ListFilter) ([]*hold.Hold, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.holdRepo.ListByUserID(ctx, userID, filter, time.Now())
}

func (s *HoldService) acquireEventLock(ctx context.Context, eventID string) (*redisinfra.DistributedLock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.EventLockKey(eventID), s.cfg.LockTTL, lockMaxRetries, lockRetryDelay)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("acquire", status).Observe(time.Since(start).Seconds())
	}
	return lock, err
}

func (s *HoldService) releaseEventLock(lock *redisinfra.DistributedLock) {
	// ハンドラのコンテキストが打ち切られてもロック解放は試みる
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	err := lock.Release(ctx)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		s.metrics.DistributedLockDuration.WithLabelValues("release", status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		logger.Warn("イベントロックの解放に失敗", zap.Error(err))
	}
}

func (s *HoldService) countHold(status string) {
	if s.metrics != nil {
		s.metrics.HoldsTotal.WithLabelValues(status).Inc()
	}
}

func (s *HoldService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("空席数キャッシュの無効化に失敗", zap.String("event_id", eventID), zap.Error(err))
	}
}
