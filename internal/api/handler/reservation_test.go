package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-seat-hold-api/internal/api"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
)

// MockReservationService はReservationServiceInterfaceのモック
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Confirm(ctx context.Context, holdID, userID string) (*hold.Hold, error) {
	args := m.Called(ctx, holdID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func (m *MockReservationService) Cancel(ctx context.Context, holdID, userID string) (*hold.Hold, error) {
	args := m.Called(ctx, holdID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func TestReservationHandler_Confirm(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に確定できる", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("Confirm", mock.Anything, "hold-1", "user-1").
			Return(testHold("hold-1", hold.StatusConfirmed), nil)

		handler := NewReservationHandler(mockService, new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/hold-1/confirm", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")
		c.SetParamNames("id")
		c.SetParamValues("hold-1")

		invokeHandler(e, c, handler.Confirm)

		assert.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data HoldResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "confirmed", envelope.Data.Status)
	})

	t.Run("未認証は401", func(t *testing.T) {
		handler := NewReservationHandler(new(MockReservationService), new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/hold-1/confirm", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "")

		invokeHandler(e, c, handler.Confirm)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("終端状態の競合は409で現在状態を返す", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("Confirm", mock.Anything, "hold-1", "user-1").
			Return(nil, &hold.StateError{Current: hold.StatusCancelled})

		handler := NewReservationHandler(mockService, new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/hold-1/confirm", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")
		c.SetParamNames("id")
		c.SetParamValues("hold-1")

		invokeHandler(e, c, handler.Confirm)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var envelope struct {
			Meta api.Meta          `json:"meta"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "cancelled", envelope.Data["current_status"])
	})

	t.Run("存在しないホールドは404", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("Confirm", mock.Anything, "missing", "user-1").
			Return(nil, hold.ErrHoldNotFound)

		handler := NewReservationHandler(mockService, new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/missing/confirm", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")
		c.SetParamNames("id")
		c.SetParamValues("missing")

		invokeHandler(e, c, handler.Confirm)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReservationHandler_Cancel(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常にキャンセルできる", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("Cancel", mock.Anything, "hold-1", "user-1").
			Return(testHold("hold-1", hold.StatusCancelled), nil)

		handler := NewReservationHandler(mockService, new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/hold-1/cancel", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")
		c.SetParamNames("id")
		c.SetParamValues("hold-1")

		invokeHandler(e, c, handler.Cancel)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("期限切れ競合は409でexpiredを返す", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("Cancel", mock.Anything, "hold-1", "user-1").
			Return(nil, &hold.StateError{Current: hold.StatusExpired})

		handler := NewReservationHandler(mockService, new(MockHoldService))

		req := httptest.NewRequest(http.MethodPost, "/reservations/hold-1/cancel", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")
		c.SetParamNames("id")
		c.SetParamValues("hold-1")

		invokeHandler(e, c, handler.Cancel)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var envelope struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "expired", envelope.Data["current_status"])
	})
}

func TestReservationHandler_ListMine(t *testing.T) {
	e := NewTestEcho()

	t.Run("自分のホールド一覧を取得できる", func(t *testing.T) {
		mockHoldService := new(MockHoldService)
		holds := []*hold.Hold{
			testHold("hold-1", hold.StatusConfirmed),
			testHold("hold-2", hold.StatusHold),
		}
		mockHoldService.On("ListUserHolds", mock.Anything, "user-1",
			mock.MatchedBy(func(f hold.ListFilter) bool { return f.Status == "" })).
			Return(holds, nil)

		handler := NewReservationHandler(new(MockReservationService), mockHoldService)

		req := httptest.NewRequest(http.MethodGet, "/me/reservations", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")

		invokeHandler(e, c, handler.ListMine)

		assert.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data []HoldResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data, 2)
	})

	t.Run("状態フィルタが渡される", func(t *testing.T) {
		mockHoldService := new(MockHoldService)
		mockHoldService.On("ListUserHolds", mock.Anything, "user-1",
			mock.MatchedBy(func(f hold.ListFilter) bool { return f.Status == hold.StatusConfirmed })).
			Return([]*hold.Hold{}, nil)

		handler := NewReservationHandler(new(MockReservationService), mockHoldService)

		req := httptest.NewRequest(http.MethodGet, "/me/reservations?status=confirmed", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")

		invokeHandler(e, c, handler.ListMine)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockHoldService.AssertExpectations(t)
	})

	t.Run("無効な状態フィルタは400", func(t *testing.T) {
		handler := NewReservationHandler(new(MockReservationService), new(MockHoldService))

		req := httptest.NewRequest(http.MethodGet, "/me/reservations?status=bogus", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, "user-1")

		invokeHandler(e, c, handler.ListMine)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
