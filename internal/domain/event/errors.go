package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound        = errors.New("イベントが見つかりません")
	ErrEventTitleRequired   = errors.New("イベントタイトルは必須です")
	ErrEventVenueRequired   = errors.New("会場は必須です")
	ErrInvalidTotalCapacity = errors.New("総座席数は1以上である必要があります")
	ErrInvalidEventTime     = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrEventCancelled       = errors.New("中止されたイベントは公開できません")
)
