package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-seat-hold-api/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/metrics"
)

// ReservationService はホールドの終端遷移（確定・キャンセル・期限切れ）を提供する
// 遷移の勝者決定はリポジトリの比較交換更新に委ね、ここでは台帳調整を
// 同一トランザクションに束ねることでちょうど1回の台帳変更を保証する
type ReservationService struct {
	holdRepo  hold.Repository
	invRepo   inventory.Repository
	txManager transaction.Manager
	cache     *redisinfra.AvailabilityCache
	publisher *rabbitmq.Publisher
	metrics   *metrics.Metrics
}

// NewReservationService は新しいReservationServiceを作成する
// cache / publisher / metrics は nil 可
func NewReservationService(
	holdRepo hold.Repository,
	invRepo inventory.Repository,
	txManager transaction.Manager,
	cache *redisinfra.AvailabilityCache,
	publisher *rabbitmq.Publisher,
	m *metrics.Metrics,
) *ReservationService {
	return &ReservationService{
		holdRepo:  holdRepo,
		invRepo:   invRepo,
		txManager: txManager,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
	}
}

// Confirm はホールドを確定し、確保済み座席を確定済みへ移す
func (s *ReservationService) Confirm(ctx context.Context, holdID, userID string) (*hold.Hold, error) {
	return s.transition(ctx, holdID, userID, hold.StatusConfirmed)
}

// Cancel はホールドをキャンセルし、確保済み座席を即時解放する
func (s *ReservationService) Cancel(ctx context.Context, holdID, userID string) (*hold.Hold, error) {
	return s.transition(ctx, holdID, userID, hold.StatusCancelled)
}

func (s *ReservationService) transition(ctx context.Context, holdID, userID string, to hold.Status) (*hold.Hold, error) {
	h, err := s.holdRepo.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if !h.IsOwnedBy(userID) {
		return nil, hold.ErrHoldForbidden
	}

	now := time.Now()
	if err := h.CanTransition(now); err != nil {
		// 期限切れだがスイーパー未処理のホールドは、この場で回収してから拒否する
		if h.Status == hold.StatusHold && h.IsExpired(now) {
			if expireErr := s.expireHold(ctx, h); expireErr != nil {
				logger.Error("期限切れホールドの回収に失敗",
					zap.String("hold_id", h.ID), zap.Error(expireErr))
			}
		}
		return nil, err
	}

	won, err := s.applyTransition(ctx, h, to)
	if err != nil {
		return nil, err
	}
	if !won {
		// 比較交換に敗れた側は現在の（実効）状態を添えて競合を報告する
		current, reloadErr := s.holdRepo.GetByID(ctx, holdID)
		if reloadErr != nil {
			return nil, reloadErr
		}
		return nil, &hold.StateError{Current: current.EffectiveStatus(time.Now())}
	}

	h.Status = to
	h.UpdatedAt = time.Now()

	s.invalidateCache(ctx, h.EventID)
	s.publish(ctx, h)

	logger.Info("ホールドを遷移しました",
		zap.String("hold_id", h.ID),
		zap.String("event_id", h.EventID),
		zap.String("status", string(to)),
	)
	return h, nil
}

// applyTransition は状態遷移と台帳調整を同一トランザクションで行う
// 比較交換に敗れた場合は台帳を変更せず (false, nil) を返す
func (s *ReservationService) applyTransition(ctx context.Context, h *hold.Hold, to hold.Status) (bool, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	won, err := s.holdRepo.TransitionStatus(ctx, tx, h.ID, to)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	switch to {
	case hold.StatusConfirmed:
		err = s.invRepo.CommitQuantity(ctx, tx, h.EventID, h.Quantity)
	case hold.StatusCancelled, hold.StatusExpired:
		err = s.invRepo.Release(ctx, tx, h.EventID, h.Quantity)
	default:
		err = fmt.Errorf("未知の遷移先です: %s", to)
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("トランザクションコミットに失敗: %w", err)
	}
	return true, nil
}

// expireHold はホールドを期限切れへ遷移させ座席を解放する
// 比較交換に敗れた場合（他の遷移が先に勝った場合）は何もしない
func (s *ReservationService) expireHold(ctx context.Context, h *hold.Hold) error {
	won, err := s.applyTransition(ctx, h, hold.StatusExpired)
	if err != nil {
		return err
	}
	if won {
		s.invalidateCache(ctx, h.EventID)
		if s.metrics != nil {
			s.metrics.HoldsExpiredTotal.Inc()
		}
	}
	return nil
}

// ExpireOverdueHolds は期限を過ぎたアクティブなホールドを回収する
// スイーパーから定期的に呼ばれ、回収した件数を返す
func (s *ReservationService) ExpireOverdueHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	overdue, err := s.holdRepo.ListExpired(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("期限切れホールドの取得に失敗: %w", err)
	}

	expired := 0
	touched := make(map[string]struct{})
	for _, h := range overdue {
		if err := s.expireHold(ctx, h); err != nil {
			logger.Error("期限切れホールドの回収に失敗",
				zap.String("hold_id", h.ID), zap.Error(err))
			continue
		}
		expired++
		touched[h.EventID] = struct{}{}
	}

	// 回収したイベントの在庫を突き合わせる
	// 不一致は AuditInventory 側で ERROR ログ済みなのでスイープ自体は止めない
	for eventID := range touched {
		if err := s.AuditInventory(ctx, eventID); err != nil {
			logger.Error("スイープ後の在庫監査に失敗",
				zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return expired, nil
}

// AuditInventory は維持カウンタとホールド集計由来の導出値を突き合わせる
// 不一致は exactly-once 保証の破れを意味するため ERROR で記録する
func (s *ReservationService) AuditInventory(ctx context.Context, eventID string) error {
	current, err := s.invRepo.Get(ctx, eventID)
	if err != nil {
		return err
	}
	derived, err := s.invRepo.RecomputeFromHolds(ctx, eventID)
	if err != nil {
		return err
	}
	if !current.Equals(derived) {
		logger.Error("在庫台帳と導出値が一致しません",
			zap.String("event_id", eventID),
			zap.Int("held", current.HeldQuantity),
			zap.Int("confirmed", current.ConfirmedQuantity),
			zap.Int("derived_held", derived.HeldQuantity),
			zap.Int("derived_confirmed", derived.ConfirmedQuantity),
		)
		return inventory.ErrInventoryInconsistency
	}
	return nil
}

func (s *ReservationService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("空席数キャッシュの無効化に失敗", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *ReservationService) publish(ctx context.Context, h *hold.Hold) {
	if s.publisher == nil {
		return
	}
	key := rabbitmq.KeyReservationConfirmed
	if h.Status == hold.StatusCancelled {
		key = rabbitmq.KeyReservationCancelled
	}
	msg := rabbitmq.ReservationMessage{
		ReservationID: h.ID,
		EventID:       h.EventID,
		UserID:        h.UserID,
		Quantity:      h.Quantity,
		Status:        string(h.Status),
		OccurredAt:    time.Now(),
	}
	if err := s.publisher.Publish(ctx, key, msg); err != nil {
		// 発行失敗で予約処理は巻き戻さない
		logger.Warn("予約イベントの発行に失敗", zap.String("hold_id", h.ID), zap.Error(err))
	}
}
