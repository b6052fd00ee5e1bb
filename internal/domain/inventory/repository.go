package inventory

import (
	"context"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// Repository は在庫台帳のインターフェース
// Reserve / Release / CommitQuantity は同一イベントに対して直列化され、
// イベントをまたぐ操作は互いに競合しない
type Repository interface {
	// Init はイベントの台帳を初期化する（シードデータ投入用）
	Init(ctx context.Context, eventID string, totalCapacity int) error

	// Get は台帳の現在値を取得する
	Get(ctx context.Context, eventID string) (*State, error)

	// AvailableSeats は現在の空席数を返す
	AvailableSeats(ctx context.Context, eventID string) (int, error)

	// Reserve は空席数の検証と確保数の加算を不可分に行う
	// 空席不足の場合は *InsufficientError を返し、台帳は変更しない
	Reserve(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error

	// Release は確保数を減算する（キャンセル・期限切れ時）
	Release(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error

	// CommitQuantity は確保済み数量を確定済みへ移す（確定時）
	CommitQuantity(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error

	// RecomputeFromHolds はホールドの集計から (held, confirmed) を導出する
	// 維持カウンタとの一致が整合性監査の対象になる
	RecomputeFromHolds(ctx context.Context, eventID string) (*State, error)
}
