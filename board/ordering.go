package board

import (
	"context"
	"errors"
	"time"

	"matrix-api/domain"
)

// Engine maintains the per-bucket position sequence. It never opens its own
// transaction: every method operates on the Tx supplied by the caller so
// that position reads and the writes depending on them stay atomic.
type Engine struct{}

// Append returns the position a task appended to the bucket should take:
// one past the current maximum, 1 for an empty bucket. The caller must
// insert through the same Tx, otherwise two concurrent appends can compute
// the same position.
func (Engine) Append(ctx context.Context, tx Tx, b domain.Bucket) (int, error) {
	max, err := tx.MaxPosition(ctx, b)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Reorder assigns position = index+1 to each id in orderedIds, the order a
// drag gesture left the bucket in. Ids no longer present in the store are
// skipped: the task may have been deleted concurrently. Reorder is
// idempotent.
//
// orderedIds is not validated against the bucket's full membership. A
// partial list renumbers only the supplied subset from 1, which can collide
// with the positions of untouched siblings until the next full reorder.
func (Engine) Reorder(ctx context.Context, tx Tx, b domain.Bucket, orderedIds []int64) error {
	now := time.Now().UTC()
	for i, id := range orderedIds {
		err := tx.UpdatePosition(ctx, id, i+1, now)
		if errors.Is(err, ErrTaskNotFound) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Move places a task into target at the given zero-based index (head of the
// bucket when index is nil). A quadrant target forces the task's category
// to match the bucket; a Today target preserves the category so the task
// keeps its origin-quadrant color.
//
// The new position may collide with an existing task in the destination;
// Move does not shift siblings to make room. Clients follow a move with a
// reorder of the destination bucket, issued as a separate request, which
// re-densifies the positions.
func (Engine) Move(ctx context.Context, tx Tx, id int64, target domain.Bucket, index *int) (domain.Task, error) {
	t, err := tx.Get(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	if cat, ok := domain.CategoryForBucket(target); ok {
		t.Category = cat
	}
	t.Bucket = target
	t.Position = 1
	if index != nil {
		t.Position = *index + 1
	}
	t.UpdatedAt = time.Now().UTC()

	if err := tx.Update(ctx, t); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}
