package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twiced-technology-gmbh/lumina/internal/date"
	"github.com/twiced-technology-gmbh/lumina/internal/task"
)

// PostgresStore keeps tasks in a single Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to databaseURL and creates the schema if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lumina_tasks (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL,
			completed_at BIGINT NULL,
			due_date BIGINT NULL,
			include_time BOOLEAN NOT NULL DEFAULT FALSE,
			notification_offset INTEGER NULL,
			priority TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			subtasks JSONB NOT NULL DEFAULT '[]',
			recurrence JSONB NULL,
			attachments TEXT[] NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lumina_tasks_position ON lumina_tasks (position, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init task schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const selectColumns = `id, text, completed, created_at, completed_at, due_date, include_time,
	notification_offset, priority, tags, subtasks, recurrence, attachments, notes, position`

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM lumina_tasks ORDER BY position ASC, created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM lumina_tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, task.ValidateTaskNotFound(id)
	}
	return t, err
}

// Add implements Store.
func (s *PostgresStore) Add(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = task.NewID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = date.FromTime(s.now())
	}
	args, err := taskArgs(t)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO lumina_tasks (
			id, text, completed, created_at, completed_at, due_date, include_time,
			notification_offset, priority, tags, subtasks, recurrence, attachments, notes, position
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,
			(SELECT COALESCE(MIN(position), 1) - 1 FROM lumina_tasks)
		)
		RETURNING position`,
		args...,
	).Scan(&t.Position)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update implements Store.
func (s *PostgresStore) Update(ctx context.Context, t *task.Task) error {
	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE lumina_tasks SET
			text=$2, completed=$3, created_at=$4, completed_at=$5, due_date=$6, include_time=$7,
			notification_offset=$8, priority=$9, tags=$10, subtasks=$11, recurrence=$12,
			attachments=$13, notes=$14
		WHERE id=$1`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ValidateTaskNotFound(t.ID)
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lumina_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ValidateTaskNotFound(id)
	}
	return nil
}

// Reorder implements Store. The current order is read and rewritten in one transaction.
func (s *PostgresStore) Reorder(ctx context.Context, ordered []*task.Task) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`SELECT id, position, created_at FROM lumina_tasks ORDER BY position ASC, created_at DESC, id ASC FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("lock tasks: %w", err)
	}
	var current []*task.Task
	for rows.Next() {
		var t task.Task
		var created int64
		if err := rows.Scan(&t.ID, &t.Position, &created); err != nil {
			rows.Close()
			return fmt.Errorf("scan task order: %w", err)
		}
		t.CreatedAt = date.Instant(created)
		current = append(current, &t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock tasks: %w", err)
	}

	next, err := applyOrder(current, ordered)
	if err != nil {
		return err
	}
	ids := make([]string, len(next))
	positions := make([]int32, len(next))
	for i, t := range next {
		ids[i] = t.ID
		positions[i] = int32(t.Position) //nolint:gosec // list length fits in int32
	}

	if _, err := tx.Exec(ctx,
		`UPDATE lumina_tasks AS t SET position = v.position
		FROM unnest($1::text[], $2::int[]) AS v(id, position)
		WHERE t.id = v.id`,
		ids, positions,
	); err != nil {
		return fmt.Errorf("update positions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func taskArgs(t *task.Task) ([]any, error) {
	subtasks, err := json.Marshal(nonNilSubtasks(t.Subtasks))
	if err != nil {
		return nil, fmt.Errorf("encode subtasks: %w", err)
	}
	var recurrence []byte
	if t.RecurrenceRule != nil {
		recurrence, err = json.Marshal(t.RecurrenceRule)
		if err != nil {
			return nil, fmt.Errorf("encode recurrence: %w", err)
		}
	}
	return []any{
		t.ID,
		t.Text,
		t.Completed,
		t.CreatedAt.Millis(),
		instantArg(t.CompletedAt),
		instantArg(t.DueDate),
		t.IncludeTime,
		t.NotificationOffset,
		t.Priority,
		nonNilStrings(t.Tags),
		subtasks,
		recurrence,
		nonNilStrings(t.Attachments),
		t.Notes,
	}, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t           task.Task
		created     int64
		completedAt *int64
		due         *int64
		subtasks    []byte
		recurrence  []byte
	)
	if err := row.Scan(
		&t.ID,
		&t.Text,
		&t.Completed,
		&created,
		&completedAt,
		&due,
		&t.IncludeTime,
		&t.NotificationOffset,
		&t.Priority,
		&t.Tags,
		&subtasks,
		&recurrence,
		&t.Attachments,
		&t.Notes,
		&t.Position,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t.CreatedAt = date.Instant(created)
	if completedAt != nil {
		t.CompletedAt = date.Instant(*completedAt).Ptr()
	}
	if due != nil {
		t.DueDate = date.Instant(*due).Ptr()
	}
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
			return nil, fmt.Errorf("decode subtasks: %w", err)
		}
	}
	if len(recurrence) > 0 {
		t.RecurrenceRule = &task.RecurrenceRule{}
		if err := json.Unmarshal(recurrence, t.RecurrenceRule); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
	}
	if len(t.Tags) == 0 {
		t.Tags = nil
	}
	if len(t.Subtasks) == 0 {
		t.Subtasks = nil
	}
	if len(t.Attachments) == 0 {
		t.Attachments = nil
	}
	return &t, nil
}

func instantArg(i *date.Instant) *int64 {
	if i == nil {
		return nil
	}
	v := i.Millis()
	return &v
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSubtasks(s []task.Subtask) []task.Subtask {
	if s == nil {
		return []task.Subtask{}
	}
	return s
}
