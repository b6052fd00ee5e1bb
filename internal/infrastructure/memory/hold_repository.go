package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// HoldRepository はホールドリポジトリのインメモリ実装
type HoldRepository struct {
	store *Store
}

// NewHoldRepository はHoldRepositoryを作成する
func NewHoldRepository(store *Store) *HoldRepository {
	return &HoldRepository{store: store}
}

// Create は新しいホールドを作成する
func (r *HoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if h.ID == "" {
		h.ID = r.store.nextID()
	}
	copied := *h
	r.store.holds[h.ID] = &copied
	return nil
}

// GetByID はIDからホールドを取得する
func (r *HoldRepository) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	h, ok := r.store.holds[id]
	if !ok {
		return nil, hold.ErrHoldNotFound
	}
	copied := *h
	return &copied, nil
}

// ListByUserID はユーザーのホールド一覧を作成日時の降順で取得する
func (r *HoldRepository) ListByUserID(ctx context.Context, userID string, filter hold.ListFilter, now time.Time) ([]*hold.Hold, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*hold.Hold
	for _, h := range r.store.holds {
		if h.UserID != userID {
			continue
		}
		if filter.Status != "" && h.EffectiveStatus(now) != filter.Status {
			continue
		}
		copied := *h
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []*hold.Hold{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], nil
}

// TransitionStatus は hold からの終端遷移を比較交換で行う
func (r *HoldRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, to hold.Status) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	h, ok := r.store.holds[id]
	if !ok {
		return false, hold.ErrHoldNotFound
	}
	if h.Status != hold.StatusHold {
		return false, nil
	}
	h.Status = to
	h.UpdatedAt = time.Now()
	return true, nil
}

// ListExpired は期限を過ぎたアクティブなホールドを取得する
func (r *HoldRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var expired []*hold.Hold
	for _, h := range r.store.holds {
		if h.Status == hold.StatusHold && !h.ExpiresAt.After(now) {
			copied := *h
			expired = append(expired, &copied)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

var _ hold.Repository = (*HoldRepository)(nil)
