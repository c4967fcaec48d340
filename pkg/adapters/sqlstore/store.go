// Package sqlstore implements ports.ActivityStore on SQLite (modernc.org/sqlite) and
// PostgreSQL (lib/pq). Both dialects share one schema; idempotency keys are UNIQUE
// columns so retried confirmations resolve to the rows created the first time.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Dialect selects the driver and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Connection pool settings for Postgres.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

// Store is a SQL-backed activity store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// OpenSQLite opens or creates a SQLite database file. ":memory:" gives a private
// in-memory database.
func OpenSQLite(path string, opts ...Option) (*Store, error) {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection: writes are serialized and :memory: stays a single database
	db.SetMaxOpenConns(1)
	return open(db, SQLite, opts...)
}

// OpenPostgres connects to PostgreSQL using a lib/pq DSN.
func OpenPostgres(dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("database DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	return open(db, Postgres, opts...)
}

func open(db *sql.DB, dialect Dialect, opts ...Option) (*Store, error) {
	s := &Store{db: db, dialect: dialect, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	s.logger.Debug("Activity store ready", "dialect", dialect)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(key string) sql.NullString {
	return sql.NullString{String: key, Valid: key != ""}
}

// CreateActivity inserts an activity unless one with the same idempotency key exists.
func (s *Store) CreateActivity(ctx context.Context, in domain.ActivityInput) (*domain.Activity, error) {
	a := domain.Activity{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		OwnerID:        in.OwnerID,
		ConversationID: in.ConversationID,
		CreatedAt:      s.now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO activities
		(id, idempotency_key, title, description, category, owner_id, conversation_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (idempotency_key) DO NOTHING`),
		a.ID, nullable(in.IdempotencyKey), a.Title, a.Description, a.Category, a.OwnerID, a.ConversationID, a.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}
	if in.IdempotencyKey == "" {
		return &a, nil
	}
	return s.activityBy(ctx, "idempotency_key", in.IdempotencyKey)
}

// CreateTask inserts a task unless one with the same idempotency key exists.
func (s *Store) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	t := domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO tasks
		(id, idempotency_key, title, description, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (idempotency_key) DO NOTHING`),
		t.ID, nullable(in.IdempotencyKey), t.Title, t.Description, string(t.Priority), t.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	if in.IdempotencyKey == "" {
		return &t, nil
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, title, description, priority, created_at
		FROM tasks WHERE idempotency_key = ?`), in.IdempotencyKey)
	return scanTask(row)
}

// AddTaskToActivity appends the task to the activity. Existing links are left as they are.
func (s *Store) AddTaskToActivity(ctx context.Context, activityID, taskID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var found int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT
		(SELECT COUNT(*) FROM activities WHERE id = ?) + (SELECT COUNT(*) FROM tasks WHERE id = ?)`),
		activityID, taskID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("failed to look up activity and task: %w", err)
	}
	if found != 2 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO activity_tasks (activity_id, task_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM activity_tasks WHERE activity_id = ?
		ON CONFLICT (activity_id, task_id) DO NOTHING`), activityID, taskID, activityID)
	if err != nil {
		return false, fmt.Errorf("failed to link task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit link: %w", err)
	}
	return true, nil
}

// GetActivityTasks returns the activity's tasks in insertion order.
func (s *Store) GetActivityTasks(ctx context.Context, activityID string) ([]domain.Task, error) {
	if _, err := s.GetActivity(ctx, activityID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT t.id, t.title, t.description, t.priority, t.created_at
		FROM activity_tasks l JOIN tasks t ON t.id = l.task_id
		WHERE l.activity_id = ? ORDER BY l.position`), activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetActivity returns domain.ErrActivityNotFound for unknown IDs.
func (s *Store) GetActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	return s.activityBy(ctx, "id", activityID)
}

func (s *Store) activityBy(ctx context.Context, column, value string) (*domain.Activity, error) {
	var a domain.Activity
	var created int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, title, description, category, owner_id, conversation_id, created_at
		FROM activities WHERE `+column+` = ?`), value).
		Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.OwnerID, &a.ConversationID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrActivityNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	return &a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var t domain.Task
	var priority string
	var created int64
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &created); err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.Priority = domain.Priority(priority)
	t.CreatedAt = time.UnixMilli(created).UTC()
	return &t, nil
}
