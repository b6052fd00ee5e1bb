package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventRepository) ListPublished(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockHoldRepository implements hold.Repository
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	args := m.Called(ctx, tx, h)
	return args.Error(0)
}

func (m *MockHoldRepository) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hold.Hold), args.Error(1)
}

func (m *MockHoldRepository) ListByUserID(ctx context.Context, userID string, filter hold.ListFilter, now time.Time) ([]*hold.Hold, error) {
	args := m.Called(ctx, userID, filter, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hold.Hold), args.Error(1)
}

func (m *MockHoldRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, to hold.Status) (bool, error) {
	args := m.Called(ctx, tx, id, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockHoldRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hold.Hold), args.Error(1)
}

// MockInventoryRepository implements inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Init(ctx context.Context, eventID string, totalCapacity int) error {
	args := m.Called(ctx, eventID, totalCapacity)
	return args.Error(0)
}

func (m *MockInventoryRepository) Get(ctx context.Context, eventID string) (*inventory.State, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.State), args.Error(1)
}

func (m *MockInventoryRepository) AvailableSeats(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) Reserve(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	args := m.Called(ctx, tx, eventID, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) Release(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	args := m.Called(ctx, tx, eventID, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) CommitQuantity(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	args := m.Called(ctx, tx, eventID, quantity)
	return args.Error(0)
}

func (m *MockInventoryRepository) RecomputeFromHolds(ctx context.Context, eventID string) (*inventory.State, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.State), args.Error(1)
}
