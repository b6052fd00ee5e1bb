package event

import "time"

// Status はイベントの公開状態を表す
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
)

// Event はイベントエンティティを表す
// TotalCapacity は公開後に変更されない前提で、在庫台帳の上限として参照される
type Event struct {
	ID            string
	Status        Status
	Title         string
	Description   string
	Venue         string
	City          string
	StartsAt      time.Time
	EndsAt        time.Time
	TotalCapacity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewEvent は新しいイベントを作成する（初期状態はドラフト）
func NewEvent(title, description, venue, city string, startsAt, endsAt time.Time, totalCapacity int) *Event {
	now := time.Now()
	return &Event{
		Status:        StatusDraft,
		Title:         title,
		Description:   description,
		Venue:         venue,
		City:          city,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		TotalCapacity: totalCapacity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsPublished はイベントが公開済みかを返す
func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

// Publish はイベントを公開状態にする
func (e *Event) Publish() error {
	if e.Status == StatusCancelled {
		return ErrEventCancelled
	}
	e.Status = StatusPublished
	e.UpdatedAt = time.Now()
	return nil
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrEventTitleRequired
	}
	if e.Venue == "" {
		return ErrEventVenueRequired
	}
	if e.TotalCapacity <= 0 {
		return ErrInvalidTotalCapacity
	}
	if !e.EndsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		return ErrInvalidEventTime
	}
	return nil
}
