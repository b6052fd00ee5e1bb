package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
)

// SeedEvents はイベントテーブルが空の場合にサンプルの公開イベントを投入する
// カタログの編集系は外部システムの担当なので、ローカル・デモ環境向けの初期データのみ持つ
func SeedEvents(ctx context.Context, eventRepo event.Repository, invRepo inventory.Repository) error {
	count, err := eventRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("シード要否の確認に失敗しました: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	samples := []*event.Event{
		event.NewEvent("東京ドームコンサート", "年末スペシャルライブ", "東京ドーム", "東京", now.Add(30*24*time.Hour), now.Add(30*24*time.Hour+3*time.Hour), 50000),
		event.NewEvent("演劇「四季」", "", "シアターコクーン", "東京", now.Add(14*24*time.Hour), now.Add(14*24*time.Hour+2*time.Hour), 700),
		event.NewEvent("ジャズナイト", "小編成ライブ", "ブルーノート大阪", "大阪", now.Add(7*24*time.Hour), now.Add(7*24*time.Hour+2*time.Hour), 120),
	}

	for _, e := range samples {
		if err := e.Publish(); err != nil {
			return err
		}
		if err := eventRepo.Create(ctx, e); err != nil {
			return err
		}
		if err := invRepo.Init(ctx, e.ID, e.TotalCapacity); err != nil {
			return err
		}
		logger.Info("サンプルイベントを投入",
			zap.String("event_id", e.ID),
			zap.String("title", e.Title),
			zap.Int("total_capacity", e.TotalCapacity),
		)
	}
	return nil
}
