package inventory

import (
	"errors"
	"fmt"
)

// Inventory ドメインのエラー定義
var (
	ErrInventoryNotFound      = errors.New("在庫情報が見つかりません")
	ErrInsufficientInventory  = errors.New("空席が不足しています")
	ErrNegativeQuantity       = errors.New("在庫カウンタが負になっています")
	ErrOverCapacity           = errors.New("確保済み座席数が総座席数を超えています")
	ErrReleaseExceedsHeld     = errors.New("解放数が確保済み座席数を超えています")
	ErrInventoryInconsistency = errors.New("在庫カウンタがホールド集計と一致しません")
)

// InsufficientError は空席不足を現在の空席数付きで表す
// errors.Is(err, ErrInsufficientInventory) でマッチする
type InsufficientError struct {
	EventID   string
	Requested int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("空席が不足しています（要求: %d, 空席: %d）", e.Requested, e.Available)
}

// Is は errors.Is(err, ErrInsufficientInventory) を成立させる
func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
