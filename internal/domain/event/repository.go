package event

import "context"

// Repository はイベントリポジトリのインターフェース
// カタログの編集系は外部の管理システムが担うため、作成はシード用途に限られる
type Repository interface {
	// Create は新しいイベントを作成する（シードデータ投入用）
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// ListPublished は公開中のイベント一覧を取得する
	ListPublished(ctx context.Context, limit, offset int) ([]*Event, error)

	// Count は登録済みイベント数を返す（シード要否の判定用）
	Count(ctx context.Context) (int, error)
}
