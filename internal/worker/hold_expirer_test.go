package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHoldExpirer はHoldExpirerのモック
type MockHoldExpirer struct {
	mock.Mock
}

func (m *MockHoldExpirer) ExpireOverdueHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	args := m.Called(ctx, now, limit)
	return args.Int(0), args.Error(1)
}

func TestNewExpiredHoldSweeper(t *testing.T) {
	mockService := new(MockHoldExpirer)
	interval := 15 * time.Second

	sweeper := NewExpiredHoldSweeper(mockService, interval)

	assert.NotNil(t, sweeper)
	assert.Equal(t, interval, sweeper.interval)
	assert.NotNil(t, sweeper.stopCh)
	assert.NotNil(t, sweeper.doneCh)
}

func TestExpiredHoldSweeper_Sweep(t *testing.T) {
	t.Run("正常に回収が実行される", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireOverdueHolds", mock.Anything, mock.AnythingOfType("time.Time"), sweepBatchSize).Return(3, nil)

		sweeper := NewExpiredHoldSweeper(mockService, time.Minute)
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("回収対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireOverdueHolds", mock.Anything, mock.AnythingOfType("time.Time"), sweepBatchSize).Return(0, nil)

		sweeper := NewExpiredHoldSweeper(mockService, time.Minute)
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireOverdueHolds", mock.Anything, mock.AnythingOfType("time.Time"), sweepBatchSize).Return(0, assert.AnError)

		sweeper := NewExpiredHoldSweeper(mockService, time.Minute)

		// パニックしないことを確認
		sweeper.sweep(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestExpiredHoldSweeper_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireOverdueHolds", mock.Anything, mock.AnythingOfType("time.Time"), sweepBatchSize).Return(0, nil).Maybe()

		sweeper := NewExpiredHoldSweeper(mockService, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go sweeper.Start(ctx)

		// 少なくとも1回tickが発火するまで待つ
		time.Sleep(60 * time.Millisecond)
		sweeper.Stop()

		// Stop は doneCh を待つため、戻った時点でループは終了している
		select {
		case <-sweeper.doneCh:
		default:
			t.Fatal("Stop後はdoneChがクローズされているべき")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockHoldExpirer)
		mockService.On("ExpireOverdueHolds", mock.Anything, mock.AnythingOfType("time.Time"), sweepBatchSize).Return(0, nil).Maybe()

		sweeper := NewExpiredHoldSweeper(mockService, 20*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		go sweeper.Start(ctx)
		cancel()

		select {
		case <-sweeper.doneCh:
		case <-time.After(time.Second):
			t.Fatal("コンテキストキャンセル後に停止しなかった")
		}
	})
}
