package api

import (
	"context"

	"matrix-api/domain"
)

// BoardService abstracts the task lifecycle controller for handlers.
type BoardService interface {
	Create(ctx context.Context, title, bucket string) (domain.Task, error)
	ListBoard(ctx context.Context, includeCompleted bool) (map[domain.Bucket][]domain.Task, error)
	ListCompleted(ctx context.Context, limit int) ([]domain.Task, error)
	Toggle(ctx context.Context, id int64) (domain.Task, error)
	EditTitle(ctx context.Context, id int64, title string) error
	Delete(ctx context.Context, id int64) error
	ReorderBucket(ctx context.Context, bucket string, orderedIds []int64) error
	MoveTask(ctx context.Context, id int64, bucket string, index *int) (domain.Task, error)
}
