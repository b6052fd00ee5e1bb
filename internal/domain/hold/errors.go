package hold

import "errors"

// Hold ドメインのエラー定義
var (
	ErrHoldNotFound    = errors.New("ホールドが見つかりません")
	ErrHoldForbidden   = errors.New("このホールドを操作する権限がありません")
	ErrInvalidQuantity = errors.New("数量は1以上である必要があります")
	ErrEventIDRequired = errors.New("イベントIDは必須です")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrRateLimited     = errors.New("ホールド作成の回数制限を超えました")
	ErrEventBusy       = errors.New("イベントが混み合っています。しばらくしてから再試行してください")

	// ErrInvalidState は終端遷移の競合を表すセンチネル
	// 現在状態を含む *StateError が errors.Is でこれにマッチする
	ErrInvalidState = errors.New("ホールドは既に終端状態です")
)

// StateError は確定・キャンセル・期限切れの競合に敗れた操作へ返すエラー
// クライアントがポーリングを打ち切れるよう、現在の状態を保持する
type StateError struct {
	Current Status
}

func (e *StateError) Error() string {
	return "ホールドは操作できない状態です: " + string(e.Current)
}

// Is は errors.Is(err, ErrInvalidState) を成立させる
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
