package memory

import (
	"context"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// InventoryRepository は在庫台帳のインメモリ実装
// イベントごとのミューテックスで reserve / release / commit を直列化する
type InventoryRepository struct {
	store *Store
}

// NewInventoryRepository はInventoryRepositoryを作成する
func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

func (r *InventoryRepository) get(eventID string) (*lockedInventory, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	li, ok := r.store.inv[eventID]
	return li, ok
}

// Init はイベントの台帳を初期化する
func (r *InventoryRepository) Init(ctx context.Context, eventID string, totalCapacity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.inv[eventID]; ok {
		return nil
	}
	r.store.inv[eventID] = &lockedInventory{
		state: inventory.State{EventID: eventID, TotalCapacity: totalCapacity},
	}
	return nil
}

// Get は台帳の現在値を取得する
func (r *InventoryRepository) Get(ctx context.Context, eventID string) (*inventory.State, error) {
	li, ok := r.get(eventID)
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	li.mu.Lock()
	defer li.mu.Unlock()
	copied := li.state
	return &copied, nil
}

// AvailableSeats は現在の空席数を返す
func (r *InventoryRepository) AvailableSeats(ctx context.Context, eventID string) (int, error) {
	state, err := r.Get(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return state.Available(), nil
}

// Reserve は空席数の検証と確保数の加算をイベント単位の排他区間で行う
func (r *InventoryRepository) Reserve(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	li, ok := r.get(eventID)
	if !ok {
		return inventory.ErrInventoryNotFound
	}

	li.mu.Lock()
	defer li.mu.Unlock()

	if li.state.Available() < quantity {
		return &inventory.InsufficientError{
			EventID:   eventID,
			Requested: quantity,
			Available: li.state.Available(),
		}
	}
	li.state.HeldQuantity += quantity
	return nil
}

// Release は確保数を減算する
func (r *InventoryRepository) Release(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	li, ok := r.get(eventID)
	if !ok {
		return inventory.ErrInventoryNotFound
	}

	li.mu.Lock()
	defer li.mu.Unlock()

	if li.state.HeldQuantity < quantity {
		return inventory.ErrReleaseExceedsHeld
	}
	li.state.HeldQuantity -= quantity
	return nil
}

// CommitQuantity は確保済み数量を確定済みへ移す
func (r *InventoryRepository) CommitQuantity(ctx context.Context, tx transaction.Tx, eventID string, quantity int) error {
	li, ok := r.get(eventID)
	if !ok {
		return inventory.ErrInventoryNotFound
	}

	li.mu.Lock()
	defer li.mu.Unlock()

	if li.state.HeldQuantity < quantity {
		return inventory.ErrReleaseExceedsHeld
	}
	li.state.HeldQuantity -= quantity
	li.state.ConfirmedQuantity += quantity
	return nil
}

// RecomputeFromHolds はホールドの集計から (held, confirmed) を導出する
func (r *InventoryRepository) RecomputeFromHolds(ctx context.Context, eventID string) (*inventory.State, error) {
	li, ok := r.get(eventID)
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	li.mu.Lock()
	total := li.state.TotalCapacity
	li.mu.Unlock()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	derived := &inventory.State{EventID: eventID, TotalCapacity: total}
	for _, h := range r.store.holds {
		if h.EventID != eventID {
			continue
		}
		switch h.Status {
		case hold.StatusHold:
			derived.HeldQuantity += h.Quantity
		case hold.StatusConfirmed:
			derived.ConfirmedQuantity += h.Quantity
		}
	}
	return derived, nil
}

var _ inventory.Repository = (*InventoryRepository)(nil)
