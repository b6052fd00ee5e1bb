package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID            string     `db:"id"`
	Status        string     `db:"status"`
	Title         string     `db:"title"`
	Description   *string    `db:"description"`
	Venue         string     `db:"venue"`
	City          string     `db:"city"`
	StartsAt      time.Time  `db:"starts_at"`
	EndsAt        *time.Time `db:"ends_at"`
	TotalCapacity int        `db:"total_capacity"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	var endsAt time.Time
	if r.EndsAt != nil {
		endsAt = *r.EndsAt
	}
	return &event.Event{
		ID:            r.ID,
		Status:        event.Status(r.Status),
		Title:         r.Title,
		Description:   desc,
		Venue:         r.Venue,
		City:          r.City,
		StartsAt:      r.StartsAt,
		EndsAt:        endsAt,
		TotalCapacity: r.TotalCapacity,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (status, title, description, venue, city, starts_at, ends_at, total_capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var desc *string
	if e.Description != "" {
		desc = &e.Description
	}
	var endsAt *time.Time
	if !e.EndsAt.IsZero() {
		endsAt = &e.EndsAt
	}

	err := r.db.QueryRowContext(ctx, query,
		string(e.Status), e.Title, desc, e.Venue, e.City, e.StartsAt, endsAt, e.TotalCapacity, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT id, status, title, description, venue, city, starts_at, ends_at, total_capacity, created_at, updated_at FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListPublished は公開中のイベント一覧を取得する
func (r *EventRepository) ListPublished(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT id, status, title, description, venue, city, starts_at, ends_at, total_capacity, created_at, updated_at
		FROM events
		WHERE status = $1
		ORDER BY starts_at ASC
		LIMIT $2 OFFSET $3
	`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query, string(event.StatusPublished), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Count は登録済みイベント数を返す
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("イベント数取得に失敗しました: %w", err)
	}
	return count, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
