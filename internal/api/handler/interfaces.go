package handler

import (
	"context"

	"github.com/sanosuguru/go-seat-hold-api/internal/application"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	GetEvent(ctx context.Context, id string) (*application.EventDetail, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
}

// HoldServiceInterface はホールドサービスのインターフェース
type HoldServiceInterface interface {
	CreateHold(ctx context.Context, eventID, userID string, quantity int) (*hold.Hold, error)
	GetHold(ctx context.Context, holdID, userID string) (*hold.Hold, error)
	ListUserHolds(ctx context.Context, userID string, filter hold.ListFilter) ([]*hold.Hold, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	Confirm(ctx context.Context, holdID, userID string) (*hold.Hold, error)
	Cancel(ctx context.Context, holdID, userID string) (*hold.Hold, error)
}
