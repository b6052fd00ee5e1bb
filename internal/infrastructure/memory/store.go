// Package memory は各リポジトリのインメモリ実装を提供する
// 在庫台帳はイベントIDからミューテックス付き構造体へのマップで表現され、
// 同一イベントの操作だけが直列化される
// アプリケーション層の並行性・シナリオテストとローカル動作確認に使う
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/transaction"
)

// Store は全リポジトリが共有するインメモリ状態
type Store struct {
	mu     sync.RWMutex
	events map[string]*event.Event
	holds  map[string]*hold.Hold
	inv    map[string]*lockedInventory
}

// lockedInventory はイベント単位の排他区画
type lockedInventory struct {
	mu    sync.Mutex
	state inventory.State
}

// NewStore は空のStoreを作成する
func NewStore() *Store {
	return &Store{
		events: make(map[string]*event.Event),
		holds:  make(map[string]*hold.Hold),
		inv:    make(map[string]*lockedInventory),
	}
}

func (s *Store) nextID() string {
	return uuid.New().String()
}

// noopTx はインメモリ実装のトランザクション
// 各操作は即時に適用されるため、コミット・ロールバックは何もしない
type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// TxManager は transaction.Manager のインメモリ実装
type TxManager struct{}

// NewTxManager は新しいTxManagerを作成する
func NewTxManager() *TxManager {
	return &TxManager{}
}

// Begin は何もしないトランザクションを返す
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	return noopTx{}, nil
}

var _ transaction.Manager = (*TxManager)(nil)
