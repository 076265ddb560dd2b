package board

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"matrix-api/domain"
)

// memStore is an in-memory Store with real all-or-nothing transaction
// semantics: a Tx works on a copy of the table and the copy replaces the
// table only when the transaction function returns nil.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]domain.Task

	failWith error // returned by every Tx write when set
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[int64]domain.Task)}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := make(map[int64]domain.Task, len(m.tasks))
	for id, t := range m.tasks {
		work[id] = t
	}
	tx := &memTx{store: m, tasks: work, nextID: m.nextID}
	if err := fn(tx); err != nil {
		return err
	}
	m.tasks = work
	m.nextID = tx.nextID
	return nil
}

func (m *memStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (m *memStore) get(id int64) (domain.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t, ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

type memTx struct {
	store  *memStore
	tasks  map[int64]domain.Task
	nextID int64
}

func (tx *memTx) Get(ctx context.Context, id int64) (domain.Task, error) {
	t, ok := tx.tasks[id]
	if !ok {
		return domain.Task{}, ErrTaskNotFound
	}
	return t, nil
}

func (tx *memTx) Insert(ctx context.Context, t domain.Task) (int64, error) {
	if err := tx.store.failWith; err != nil {
		return 0, err
	}
	tx.nextID++
	t.ID = tx.nextID
	tx.tasks[t.ID] = t
	return t.ID, nil
}

func (tx *memTx) Update(ctx context.Context, t domain.Task) error {
	if err := tx.store.failWith; err != nil {
		return err
	}
	if _, ok := tx.tasks[t.ID]; !ok {
		return ErrTaskNotFound
	}
	tx.tasks[t.ID] = t
	return nil
}

func (tx *memTx) UpdatePosition(ctx context.Context, id int64, position int, updatedAt time.Time) error {
	if err := tx.store.failWith; err != nil {
		return err
	}
	t, ok := tx.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.Position = position
	t.UpdatedAt = updatedAt
	tx.tasks[id] = t
	return nil
}

func (tx *memTx) MaxPosition(ctx context.Context, b domain.Bucket) (int, error) {
	max := 0
	for _, t := range tx.tasks {
		if t.Bucket == b && t.Position > max {
			max = t.Position
		}
	}
	return max, nil
}

func (tx *memTx) Delete(ctx context.Context, id int64) error {
	if err := tx.store.failWith; err != nil {
		return err
	}
	delete(tx.tasks, id)
	return nil
}

var errStoreBroken = errors.New("store broken")
