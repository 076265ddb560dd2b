package api

import "matrix-api/domain"

const requestBodyMaxSize = 64 * 1024 // 64 KiB

// POST /api/tasks request body.
type createTaskBody struct {
	Title  string `json:"title"`
	Bucket string `json:"bucket"`
}

// PATCH /api/tasks/:id request body.
type editTaskBody struct {
	Title string `json:"title"`
}

// POST /api/reorder request body, as issued by the drag-and-drop client.
type reorderBody struct {
	Bucket     string  `json:"bucket"`
	OrderedIds []int64 `json:"orderedIds"`
}

// POST /api/move request body. Index is the zero-based drop slot; absent
// means the head of the bucket.
type moveBody struct {
	ID     int64  `json:"id"`
	Bucket string `json:"bucket"`
	Index  *int   `json:"index,omitempty"`
}

// GET /api/board response body.
type boardResponse struct {
	Buckets map[domain.Bucket][]domain.Task `json:"buckets"`
}

// GET /api/completed response body.
type completedResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type errorResponse struct {
	Error string `json:"error"`
}
