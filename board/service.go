package board

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"matrix-api/domain"
)

// DefaultCompletedLimit caps ListCompleted when the caller does not supply
// a limit of its own.
const DefaultCompletedLimit = 100

// Service orchestrates the task lifecycle: creation, completion toggling,
// editing, deletion and listing. Position bookkeeping is delegated to the
// ordering engine; every mutating operation runs as one transaction.
type Service struct {
	store  Store
	engine Engine
}

// NewService creates a Service on top of the given record store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and persists a new task at the tail of the bucket.
func (s *Service) Create(ctx context.Context, title, bucket string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Task{}, ValidationError{Reason: "title must not be empty"}
	}
	b, err := domain.ParseBucket(bucket)
	if err != nil {
		return domain.Task{}, err
	}
	cat, ok := domain.CategoryForBucket(b)
	if !ok {
		// Today has no intrinsic category; pick the first quadrant.
		cat = domain.CategoryUrgentImportant
	}

	var created domain.Task
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		pos, err := s.engine.Append(ctx, tx, b)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		t := domain.Task{
			Title:     title,
			Category:  cat,
			Bucket:    b,
			Position:  pos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id, err := tx.Insert(ctx, t)
		if err != nil {
			return err
		}
		t.ID = id
		created = t
		return nil
	})
	if err != nil {
		return domain.Task{}, s.wrap("create", err)
	}
	return created, nil
}

// Toggle flips the completed flag. Bucket and position are untouched.
func (s *Service) Toggle(ctx context.Context, id int64) (domain.Task, error) {
	var toggled domain.Task
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		t.Completed = !t.Completed
		t.UpdatedAt = time.Now().UTC()
		if err := tx.Update(ctx, t); err != nil {
			return err
		}
		toggled = t
		return nil
	})
	if err != nil {
		return domain.Task{}, s.wrap("toggle", err)
	}
	return toggled, nil
}

// EditTitle replaces a task's title with the trimmed input.
func (s *Service) EditTitle(ctx context.Context, id int64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Reason: "title must not be empty"}
	}
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		t, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		t.Title = title
		t.UpdatedAt = time.Now().UTC()
		return tx.Update(ctx, t)
	})
	return s.wrap("edit", err)
}

// Delete removes a task. Deleting an absent id succeeds; the gap the task
// leaves in its bucket's position sequence is tolerated until the bucket is
// next reordered.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		return tx.Delete(ctx, id)
	})
	return s.wrap("delete", err)
}

// ReorderBucket renumbers the bucket's tasks to match orderedIds.
func (s *Service) ReorderBucket(ctx context.Context, bucket string, orderedIds []int64) error {
	b, err := domain.ParseBucket(bucket)
	if err != nil {
		return err
	}
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		return s.engine.Reorder(ctx, tx, b, orderedIds)
	})
	return s.wrap("reorder", err)
}

// MoveTask transfers a task into another bucket, applying the category
// rules of the ordering engine.
func (s *Service) MoveTask(ctx context.Context, id int64, bucket string, index *int) (domain.Task, error) {
	b, err := domain.ParseBucket(bucket)
	if err != nil {
		return domain.Task{}, err
	}
	if index != nil && *index < 0 {
		return domain.Task{}, ValidationError{Reason: "index must not be negative"}
	}
	var moved domain.Task
	err = s.store.WithinTx(ctx, func(tx Tx) error {
		t, err := s.engine.Move(ctx, tx, id, b, index)
		if err != nil {
			return err
		}
		moved = t
		return nil
	})
	if err != nil {
		return domain.Task{}, s.wrap("move", err)
	}
	return moved, nil
}

// ListBoard returns every bucket's tasks sorted ascending by position. All
// five buckets are present in the result, empty or not. Completed tasks
// are omitted unless includeCompleted is set.
func (s *Service) ListBoard(ctx context.Context, includeCompleted bool) (map[domain.Bucket][]domain.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, s.wrap("list", err)
	}

	groups := make(map[domain.Bucket][]domain.Task, len(domain.Buckets()))
	for _, b := range domain.Buckets() {
		groups[b] = []domain.Task{}
	}
	for _, t := range tasks {
		if t.Completed && !includeCompleted {
			continue
		}
		groups[t.Bucket] = append(groups[t.Bucket], t)
	}
	for b := range groups {
		g := groups[b]
		sort.SliceStable(g, func(i, j int) bool { return g[i].Position < g[j].Position })
	}
	return groups, nil
}

// ListCompleted returns completed tasks across all buckets, most recently
// updated first, capped at limit (DefaultCompletedLimit when limit <= 0).
func (s *Service) ListCompleted(ctx context.Context, limit int) ([]domain.Task, error) {
	if limit <= 0 || limit > DefaultCompletedLimit {
		limit = DefaultCompletedLimit
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, s.wrap("list completed", err)
	}

	completed := make([]domain.Task, 0, limit)
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].UpdatedAt.After(completed[j].UpdatedAt)
	})
	if len(completed) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

// wrap classifies an error from a store round trip. Domain errors pass
// through untouched; anything else is a storage failure.
func (s *Service) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve ValidationError
	var ibe domain.InvalidBucketError
	if errors.Is(err, ErrTaskNotFound) || errors.As(err, &ve) || errors.As(err, &ibe) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
