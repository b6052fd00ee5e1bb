package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

type holdRow struct {
	ID        string    `db:"id"`
	EventID   string    `db:"event_id"`
	UserID    string    `db:"user_id"`
	Quantity  int       `db:"quantity"`
	Status    string    `db:"status"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *holdRow) toEntity() *hold.Hold {
	return &hold.Hold{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Quantity:  r.Quantity,
		Status:    hold.Status(r.Status),
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const holdColumns = `id, event_id, user_id, quantity, status, expires_at, created_at, updated_at`

// HoldRepository はホールドリポジトリのPostgreSQL実装
type HoldRepository struct {
	db *sqlx.DB
}

// NewHoldRepository はHoldRepositoryを作成する
func NewHoldRepository(db *sqlx.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// Create は新しいホールドを作成する（在庫確保と同一トランザクション必須）
func (r *HoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションの型が不正です")
	}

	query := `
		INSERT INTO holds (event_id, user_id, quantity, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		h.EventID, h.UserID, h.Quantity, string(h.Status), h.ExpiresAt, h.CreatedAt, h.UpdatedAt,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("ホールド作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからホールドを取得する
func (r *HoldRepository) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	var row holdRow
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hold.ErrHoldNotFound
		}
		return nil, fmt.Errorf("ホールド取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByUserID はユーザーのホールド一覧を取得する
// hold / expired での絞り込みは expires_at を併用した遅延期限判定で行う
func (r *HoldRepository) ListByUserID(ctx context.Context, userID string, filter hold.ListFilter, now time.Time) ([]*hold.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE user_id = $1`
	args := []interface{}{userID}

	switch filter.Status {
	case "":
		// 絞り込みなし
	case hold.StatusHold:
		query += ` AND status = 'hold' AND expires_at > $2`
		args = append(args, now)
	case hold.StatusExpired:
		query += ` AND status = 'hold' AND expires_at <= $2`
		args = append(args, now)
	default:
		query += ` AND status = $2`
		args = append(args, string(filter.Status))
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var rows []holdRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ホールド一覧取得に失敗しました: %w", err)
	}

	result := make([]*hold.Hold, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

// TransitionStatus は hold からの終端遷移を比較交換で行う
// 1文のUPDATEで状態検査と書き込みを不可分に行い、勝者を1つに絞る
func (r *HoldRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, to hold.Status) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return false, fmt.Errorf("トランザクションの型が不正です")
	}

	query := `UPDATE holds SET status = $1, updated_at = NOW() WHERE id = $2 AND status = 'hold'`
	result, err := sqlxTx.ExecContext(ctx, query, string(to), id)
	if err != nil {
		return false, fmt.Errorf("ホールド状態更新に失敗しました: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	return rows == 1, nil
}

// ListExpired は期限を過ぎたアクティブなホールドを取得する
func (r *HoldRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	var rows []holdRow
	query := `SELECT ` + holdColumns + ` FROM holds WHERE status = 'hold' AND expires_at <= $1 ORDER BY expires_at ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &rows, query, now, limit); err != nil {
		return nil, fmt.Errorf("期限切れホールド取得に失敗しました: %w", err)
	}

	result := make([]*hold.Hold, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

var _ hold.Repository = (*HoldRepository)(nil)
