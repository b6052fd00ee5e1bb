package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
)

// sweepBatchSize は1回の回収で処理する最大件数
const sweepBatchSize = 100

// HoldExpirer は期限切れホールドを回収するインターフェース
type HoldExpirer interface {
	ExpireOverdueHolds(ctx context.Context, now time.Time, limit int) (int, error)
}

// ExpiredHoldSweeper は期限切れホールドを定期的に回収するワーカー
// 回収が遅れてもAPIの遅延期限切れ判定が先に立つため、間隔は可用性への影響なく延ばせる
type ExpiredHoldSweeper struct {
	reservationService HoldExpirer
	interval           time.Duration
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewExpiredHoldSweeper は新しいスイーパーを作成
func NewExpiredHoldSweeper(rs HoldExpirer, interval time.Duration) *ExpiredHoldSweeper {
	return &ExpiredHoldSweeper{
		reservationService: rs,
		interval:           interval,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (s *ExpiredHoldSweeper) Start(ctx context.Context) {
	logger.Info("期限切れホールドスイーパー開始", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れホールドスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れホールドスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpiredHoldSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れホールドを1バッチ回収する
func (s *ExpiredHoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れホールドの回収開始")

	count, err := s.reservationService.ExpireOverdueHolds(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		log.Error("期限切れホールドの回収失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れホールドを回収", zap.Int("count", count))
	} else {
		log.Debug("期限切れホールドなし")
	}
}
