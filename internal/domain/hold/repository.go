package hold

import (
	"context"
	"time"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// ListFilter はユーザーのホールド一覧取得の絞り込み条件
// Status が StatusHold / StatusExpired の場合は expires_at と併せて判定する
type ListFilter struct {
	Status Status // 空文字なら全件
	Limit  int
	Offset int
}

// Repository はホールドリポジトリのインターフェース
type Repository interface {
	// Create は新しいホールドを作成する（在庫確保と同一トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, hold *Hold) error

	// GetByID はIDからホールドを取得する
	GetByID(ctx context.Context, id string) (*Hold, error)

	// ListByUserID はユーザーのホールド一覧を作成日時の降順で取得する
	ListByUserID(ctx context.Context, userID string, filter ListFilter, now time.Time) ([]*Hold, error)

	// TransitionStatus は hold からの終端遷移を比較交換で行う
	// 既に終端状態だった場合は false を返し、行は変更しない
	// 台帳調整と同一トランザクションで呼ぶことで、確定・キャンセル・期限切れの
	// うち勝者だけが台帳をちょうど1回だけ動かすことを保証する
	TransitionStatus(ctx context.Context, tx transaction.Tx, id string, to Status) (bool, error)

	// ListExpired は期限を過ぎたアクティブなホールドを取得する
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Hold, error)
}
