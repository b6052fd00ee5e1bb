package inventory

// State はイベントごとの在庫台帳を表す
// 不変条件: 0 <= HeldQuantity, 0 <= ConfirmedQuantity,
// HeldQuantity + ConfirmedQuantity <= TotalCapacity
type State struct {
	EventID           string
	TotalCapacity     int
	HeldQuantity      int
	ConfirmedQuantity int
}

// Available は現在の空席数を返す
func (s *State) Available() int {
	return s.TotalCapacity - s.HeldQuantity - s.ConfirmedQuantity
}

// CheckInvariant は台帳の不変条件を検証する
func (s *State) CheckInvariant() error {
	if s.HeldQuantity < 0 || s.ConfirmedQuantity < 0 {
		return ErrNegativeQuantity
	}
	if s.HeldQuantity+s.ConfirmedQuantity > s.TotalCapacity {
		return ErrOverCapacity
	}
	return nil
}

// Equals は保持カウンタが一致するかを返す（導出値との整合性監査用）
func (s *State) Equals(other *State) bool {
	return s.HeldQuantity == other.HeldQuantity &&
		s.ConfirmedQuantity == other.ConfirmedQuantity
}
