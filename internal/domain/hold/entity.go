package hold

import "time"

// Status はホールドの状態を表す
// hold のみが非終端状態で、confirmed / cancelled / expired は終端状態
type Status string

const (
	StatusHold      Status = "hold"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// IsTerminal は終端状態かを返す
func (s Status) IsTerminal() bool {
	return s != StatusHold
}

// Hold は座席の仮押さえを表すエンティティ
// 作成後に削除されることはなく、終端状態へ遷移した後も予約試行の記録として残る
type Hold struct {
	ID        string
	EventID   string
	UserID    string
	Quantity  int
	Status    Status
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewHold は新しいホールドを作成する
func NewHold(eventID, userID string, quantity int, ttl time.Duration) *Hold {
	now := time.Now()
	return &Hold{
		EventID:   eventID,
		UserID:    userID,
		Quantity:  quantity,
		Status:    StatusHold,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsExpired は指定時刻の時点で期限切れかを返す
// 境界は expires_at <= now で、スイーパーの抽出条件と同じ定義
func (h *Hold) IsExpired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// IsOwnedBy はホールドの所有者かを返す
func (h *Hold) IsOwnedBy(userID string) bool {
	return h.UserID == userID
}

// EffectiveStatus は表示用の状態を返す
// スイーパーが未処理でも、期限を過ぎたアクティブなホールドは expired として扱う
func (h *Hold) EffectiveStatus(now time.Time) Status {
	if h.Status == StatusHold && h.IsExpired(now) {
		return StatusExpired
	}
	return h.Status
}

// CanTransition は指定時刻の時点で終端遷移が可能かを検証する
// 実際の遷移はリポジトリの比較交換更新で行われ、ここは事前チェックに使う
func (h *Hold) CanTransition(now time.Time) error {
	if h.Status != StatusHold {
		return &StateError{Current: h.Status}
	}
	if h.IsExpired(now) {
		return &StateError{Current: StatusExpired}
	}
	return nil
}

// Validate はホールドの検証を行う
func (h *Hold) Validate() error {
	if h.EventID == "" {
		return ErrEventIDRequired
	}
	if h.UserID == "" {
		return ErrUserIDRequired
	}
	if h.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
