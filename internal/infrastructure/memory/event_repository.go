package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
)

// EventRepository はイベントリポジトリのインメモリ実装
type EventRepository struct {
	store *Store
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e.ID == "" {
		e.ID = r.store.nextID()
	}
	copied := *e
	r.store.events[e.ID] = &copied
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

// ListPublished は公開中のイベント一覧を開始時刻の昇順で取得する
func (r *EventRepository) ListPublished(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var published []*event.Event
	for _, e := range r.store.events {
		if e.IsPublished() {
			copied := *e
			published = append(published, &copied)
		}
	}
	sort.Slice(published, func(i, j int) bool {
		return published[i].StartsAt.Before(published[j].StartsAt)
	})

	if offset >= len(published) {
		return []*event.Event{}, nil
	}
	end := offset + limit
	if end > len(published) {
		end = len(published)
	}
	return published[offset:end], nil
}

// Count は登録済みイベント数を返す
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.events), nil
}

var _ event.Repository = (*EventRepository)(nil)
