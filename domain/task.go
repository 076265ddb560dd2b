package domain

import "time"

// Task represents a single board item.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Bucket    Bucket    `json:"bucket"`
	Completed bool      `json:"completed"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
