package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-seat-hold-api/internal/config"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
)

func publishedEvent(id string, capacity int) *event.Event {
	return &event.Event{
		ID:            id,
		Status:        event.StatusPublished,
		Title:         "テストイベント",
		Venue:         "テスト会場",
		City:          "東京",
		StartsAt:      time.Now().Add(24 * time.Hour),
		EndsAt:        time.Now().Add(26 * time.Hour),
		TotalCapacity: capacity,
	}
}

func newTestHoldService(holdRepo *MockHoldRepository, eventRepo *MockEventRepository, invRepo *MockInventoryRepository, txManager *MockTxManager) *HoldService {
	cfg := config.HoldConfig{TTL: 5 * time.Minute, LockTTL: 5 * time.Second, RateLimitPerMinute: 5}
	return NewHoldService(holdRepo, eventRepo, invRepo, txManager, nil, nil, nil, nil, cfg)
}

func TestHoldService_CreateHold(t *testing.T) {
	ctx := context.Background()

	t.Run("正常にホールドを作成できる", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		eventRepo := new(MockEventRepository)
		invRepo := new(MockInventoryRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)

		eventRepo.On("GetByID", ctx, "event-1").Return(publishedEvent("event-1", 100), nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		invRepo.On("Reserve", ctx, tx, "event-1", 2).Return(nil)
		holdRepo.On("Create", ctx, tx, mock.AnythingOfType("*hold.Hold")).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(errors.New("already committed"))

		service := newTestHoldService(holdRepo, eventRepo, invRepo, txManager)
		h, err := service.CreateHold(ctx, "event-1", "user-1", 2)

		require.NoError(t, err)
		assert.Equal(t, hold.StatusHold, h.Status)
		assert.Equal(t, "event-1", h.EventID)
		assert.Equal(t, "user-1", h.UserID)
		assert.Equal(t, 2, h.Quantity)
		assert.True(t, h.ExpiresAt.After(time.Now()), "期限は未来であるべき")
		holdRepo.AssertExpectations(t)
		invRepo.AssertExpectations(t)
	})

	t.Run("数量0はバリデーションエラー", func(t *testing.T) {
		service := newTestHoldService(new(MockHoldRepository), new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))

		_, err := service.CreateHold(ctx, "event-1", "user-1", 0)
		assert.ErrorIs(t, err, hold.ErrInvalidQuantity)
	})

	t.Run("負の数量はバリデーションエラー", func(t *testing.T) {
		service := newTestHoldService(new(MockHoldRepository), new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))

		_, err := service.CreateHold(ctx, "event-1", "user-1", -3)
		assert.ErrorIs(t, err, hold.ErrInvalidQuantity)
	})

	t.Run("存在しないイベントはNotFound", func(t *testing.T) {
		eventRepo := new(MockEventRepository)
		eventRepo.On("GetByID", ctx, "missing").Return(nil, event.ErrEventNotFound)

		service := newTestHoldService(new(MockHoldRepository), eventRepo, new(MockInventoryRepository), new(MockTxManager))
		_, err := service.CreateHold(ctx, "missing", "user-1", 1)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("非公開イベントは存在を隠してNotFound", func(t *testing.T) {
		eventRepo := new(MockEventRepository)
		draft := publishedEvent("event-1", 100)
		draft.Status = event.StatusDraft
		eventRepo.On("GetByID", ctx, "event-1").Return(draft, nil)

		service := newTestHoldService(new(MockHoldRepository), eventRepo, new(MockInventoryRepository), new(MockTxManager))
		_, err := service.CreateHold(ctx, "event-1", "user-1", 1)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("空席不足は現在の空席数付きで失敗する", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		eventRepo := new(MockEventRepository)
		invRepo := new(MockInventoryRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)

		eventRepo.On("GetByID", ctx, "event-1").Return(publishedEvent("event-1", 10), nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		invRepo.On("Reserve", ctx, tx, "event-1", 8).
			Return(&inventory.InsufficientError{EventID: "event-1", Requested: 8, Available: 3})
		tx.On("Rollback").Return(nil)

		service := newTestHoldService(holdRepo, eventRepo, invRepo, txManager)
		_, err := service.CreateHold(ctx, "event-1", "user-1", 8)

		require.Error(t, err)
		assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
		var insufficient *inventory.InsufficientError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 3, insufficient.Available)
		// 不足時はホールドを作成しない
		holdRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ホールド作成失敗時はロールバックされる", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		eventRepo := new(MockEventRepository)
		invRepo := new(MockInventoryRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)

		eventRepo.On("GetByID", ctx, "event-1").Return(publishedEvent("event-1", 100), nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		invRepo.On("Reserve", ctx, tx, "event-1", 1).Return(nil)
		holdRepo.On("Create", ctx, tx, mock.AnythingOfType("*hold.Hold")).Return(errors.New("insert failed"))
		tx.On("Rollback").Return(nil)

		service := newTestHoldService(holdRepo, eventRepo, invRepo, txManager)
		_, err := service.CreateHold(ctx, "event-1", "user-1", 1)

		require.Error(t, err)
		tx.AssertCalled(t, "Rollback")
		tx.AssertNotCalled(t, "Commit")
	})
}

func TestHoldService_GetHold(t *testing.T) {
	ctx := context.Background()

	t.Run("所有者はホールドを取得できる", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		h := &hold.Hold{ID: "hold-1", EventID: "event-1", UserID: "user-1", Quantity: 2, Status: hold.StatusHold, ExpiresAt: time.Now().Add(time.Minute)}
		holdRepo.On("GetByID", ctx, "hold-1").Return(h, nil)

		service := newTestHoldService(holdRepo, new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))
		got, err := service.GetHold(ctx, "hold-1", "user-1")

		require.NoError(t, err)
		assert.Equal(t, "hold-1", got.ID)
	})

	t.Run("他人のホールドはForbidden", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		h := &hold.Hold{ID: "hold-1", EventID: "event-1", UserID: "user-1", Status: hold.StatusHold}
		holdRepo.On("GetByID", ctx, "hold-1").Return(h, nil)

		service := newTestHoldService(holdRepo, new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))
		_, err := service.GetHold(ctx, "hold-1", "user-2")
		assert.ErrorIs(t, err, hold.ErrHoldForbidden)
	})

	t.Run("存在しないホールドはNotFound", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		holdRepo.On("GetByID", ctx, "missing").Return(nil, hold.ErrHoldNotFound)

		service := newTestHoldService(holdRepo, new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))
		_, err := service.GetHold(ctx, "missing", "user-1")
		assert.ErrorIs(t, err, hold.ErrHoldNotFound)
	})
}

func TestHoldService_ListUserHolds(t *testing.T) {
	ctx := context.Background()

	t.Run("デフォルトのページングが適用される", func(t *testing.T) {
		holdRepo := new(MockHoldRepository)
		holdRepo.On("ListByUserID", ctx, "user-1",
			mock.MatchedBy(func(f hold.ListFilter) bool { return f.Limit == 20 && f.Offset == 0 }),
			mock.AnythingOfType("time.Time"),
		).Return([]*hold.Hold{}, nil)

		service := newTestHoldService(holdRepo, new(MockEventRepository), new(MockInventoryRepository), new(MockTxManager))
		_, err := service.ListUserHolds(ctx, "user-1", hold.ListFilter{Limit: 0, Offset: -1})

		require.NoError(t, err)
		holdRepo.AssertExpectations(t)
	})
}
