package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"matrix-api/board"
	"matrix-api/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT    NOT NULL,
	category   TEXT    NOT NULL,
	bucket     TEXT    NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	position   INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_bucket_position ON tasks(bucket, position);
`

const taskColumns = "id, title, category, bucket, completed, position, created_at, updated_at"

// SQLite is the durable task record store. Bucket and category are stored
// as their canonical string tokens; ids are assigned by the database.
type SQLite struct {
	db *sql.DB
}

// New opens (creating if necessary) the task database at path and ensures
// the schema exists.
func New(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// WithinTx runs fn inside one database transaction. A non-nil error from fn
// rolls everything back.
func (s *SQLite) WithinTx(ctx context.Context, fn func(board.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&sqliteTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListTasks returns every task ordered by bucket then position.
func (s *SQLite) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY bucket, position ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (x *sqliteTx) Get(ctx context.Context, id int64) (domain.Task, error) {
	row := x.tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, board.ErrTaskNotFound
	}
	return t, err
}

func (x *sqliteTx) Insert(ctx context.Context, t domain.Task) (int64, error) {
	res, err := x.tx.ExecContext(ctx,
		"INSERT INTO tasks (title, category, bucket, completed, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.Title, string(t.Category), string(t.Bucket), t.Completed, t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (x *sqliteTx) Update(ctx context.Context, t domain.Task) error {
	res, err := x.tx.ExecContext(ctx,
		"UPDATE tasks SET title = ?, category = ?, bucket = ?, completed = ?, position = ?, updated_at = ? WHERE id = ?",
		t.Title, string(t.Category), string(t.Bucket), t.Completed, t.Position, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (x *sqliteTx) UpdatePosition(ctx context.Context, id int64, position int, updatedAt time.Time) error {
	res, err := x.tx.ExecContext(ctx,
		"UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?",
		position, updatedAt, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (x *sqliteTx) MaxPosition(ctx context.Context, b domain.Bucket) (int, error) {
	var max int
	err := x.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) FROM tasks WHERE bucket = ?", string(b)).Scan(&max)
	return max, err
}

func (x *sqliteTx) Delete(ctx context.Context, id int64) error {
	_, err := x.tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return board.ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Bucket, &t.Completed, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
