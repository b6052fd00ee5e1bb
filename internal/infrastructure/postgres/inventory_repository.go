package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

type inventoryRow struct {
	EventID           string `db:"event_id"`
	TotalCapacity     int    `db:"total_capacity"`
	HeldQuantity      int    `db:"held_quantity"`
	ConfirmedQuantity int    `db:"confirmed_quantity"`
}

func (r *inventoryRow) toEntity() *inventory.State {
	return &inventory.State{
		EventID:           r.EventID,
		TotalCapacity:     r.TotalCapacity,
		HeldQuantity:      r.HeldQuantity,
		ConfirmedQuantity: r.ConfirmedQuantity,
	}
}

// InventoryRepository は在庫台帳のPostgreSQL実装
// 台帳の読み書きはイベント行単位の条件付きUPDATEで直列化され、
// 異なるイベントの操作は互いにブロックしない
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository はInventoryRepositoryを作成する
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Init はイベントの台帳を初期化する
func (r *InventoryRepository) Init(ctx context.Context, eventID string, totalCapacity int) error {
	query := `
		INSERT INTO event_inventory (event_id, total_capacity, held_quantity, confirmed_quantity)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (event_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, eventID, totalCapacity); err != nil {
		return fmt.Errorf("在庫台帳の初期化に失敗しました: %w", err)
	}
	return nil
}

// Get は台帳の現在値を取得する
func (r *InventoryRepository) Get(ctx context.Context, eventID string) (*inventory.State, error) {
	var row inventoryRow
	query := `SELECT event_id, total_capacity, held_quantity, confirmed_quantity FROM event_inventory WHERE event_id = $1`
	if err := r.db.GetContext(ctx, &row, query, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("在庫取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// AvailableSeats は現在の空席数を返す
func (r *InventoryRepository) AvailableSeats(ctx context.Context, eventID string) (int, error) {
	state, err := r.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return state.Available(), nil
}

// Reserve は空席数の検証と確保数の加算を1文のUPDATEで不可分に行う
// WHERE句の空席判定が失敗した場合は行が変更されず、空席不足として報告する
func (r *InventoryRepository) Reserve(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}

	query := `
		UPDATE event_inventory
		SET held_quantity = held_quantity + $2
		WHERE event_id = $1
		  AND total_capacity - held_quantity - confirmed_quantity >= $2
	`
	result, err := sqlxTx.ExecContext(ctx, query, eventID, quantity)
	if err != nil {
		return fmt.Errorf("在庫確保に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// 行が存在しないのか空席不足なのかを切り分ける
	// 同一トランザクション内で読むことで確保行のロック順序と整合させる
	var row inventoryRow
	getQuery := `SELECT event_id, total_capacity, held_quantity, confirmed_quantity FROM event_inventory WHERE event_id = $1`
	if err := sqlxTx.GetContext(ctx, &row, getQuery, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inventory.ErrInventoryNotFound
		}
		return fmt.Errorf("在庫取得に失敗しました: %w", err)
	}
	return &inventory.InsufficientError{
		EventID:   eventID,
		Requested: quantity,
		Available: row.toEntity().Available(),
	}
}

// Release は確保数を減算する
func (r *InventoryRepository) Release(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}

	query := `
		UPDATE event_inventory
		SET held_quantity = held_quantity - $2
		WHERE event_id = $1 AND held_quantity >= $2
	`
	result, err := sqlxTx.ExecContext(ctx, query, eventID, quantity)
	if err != nil {
		return fmt.Errorf("在庫解放に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return inventory.ErrReleaseExceedsHeld
	}
	return nil
}

// CommitQuantity は確保済み数量を確定済みへ移す
func (r *InventoryRepository) CommitQuantity(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}

	query := `
		UPDATE event_inventory
		SET held_quantity = held_quantity - $2,
		    confirmed_quantity = confirmed_quantity + $2
		WHERE event_id = $1 AND held_quantity >= $2
	`
	result, err := sqlxTx.ExecContext(ctx, query, eventID, quantity)
	if err != nil {
		return fmt.Errorf("在庫確定に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return inventory.ErrReleaseExceedsHeld
	}
	return nil
}

// RecomputeFromHolds はホールドの集計から (held, confirmed) を導出する
// アクティブなホールドはスイーパー処理前なら期限切れでも held に数える
// （台帳の held_quantity も解放まで減らないため、維持カウンタと定義が揃う）
func (r *InventoryRepository) RecomputeFromHolds(ctx context.Context, eventID string) (*inventory.State, error) {
	query := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE status = 'hold'), 0)      AS held,
			COALESCE(SUM(quantity) FILTER (WHERE status = 'confirmed'), 0) AS confirmed
		FROM holds
		WHERE event_id = $1
	`
	var derived struct {
		Held      int `db:"held"`
		Confirmed int `db:"confirmed"`
	}
	if err := r.db.GetContext(ctx, &derived, query, eventID); err != nil {
		return nil, fmt.Errorf("ホールド集計に失敗しました: %w", err)
	}

	state, err := r.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &inventory.State{
		EventID:           eventID,
		TotalCapacity:     state.TotalCapacity,
		HeldQuantity:      derived.Held,
		ConfirmedQuantity: derived.Confirmed,
	}, nil
}

var _ inventory.Repository = (*InventoryRepository)(nil)
