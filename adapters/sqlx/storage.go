package sqlx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database drivers registered for Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"dailybag/core"
	"dailybag/engine"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements engine.Storage on a SQL database.
//
// Schema:
//
//	CREATE TABLE chores (
//	    user_id      TEXT NOT NULL,
//	    id           TEXT NOT NULL,
//	    title        TEXT NOT NULL DEFAULT '',
//	    points       INTEGER NOT NULL DEFAULT 0,
//	    final_points INTEGER NULL,
//	    completed    BOOLEAN NOT NULL DEFAULT FALSE,
//	    completed_by TEXT NOT NULL DEFAULT '',
//	    completed_at TIMESTAMP NULL,
//	    position     INTEGER NOT NULL,
//	    PRIMARY KEY (user_id, id)
//	);
//	CREATE TABLE user_lifetime (
//	    user_id TEXT PRIMARY KEY,
//	    points  INTEGER NOT NULL DEFAULT 0
//	);
type Store struct {
	db *sqlx.DB
}

// New opens a connection with the provided configuration.
func New(cfg Config) (*Store, error) {
	db, err := sqlx.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection (useful for testing).
func NewWithDB(db *sqlx.DB, _ Driver) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

type choreRow struct {
	UserID      string        `db:"user_id"`
	ID          string        `db:"id"`
	Title       string        `db:"title"`
	Points      int           `db:"points"`
	FinalPoints sql.NullInt64 `db:"final_points"`
	Completed   bool          `db:"completed"`
	CompletedBy string        `db:"completed_by"`
	CompletedAt sql.NullTime  `db:"completed_at"`
	Position    int           `db:"position"`
}

func (r choreRow) record() core.ChoreRecord {
	rec := core.ChoreRecord{
		ID:          r.ID,
		Title:       r.Title,
		AssignedTo:  core.UserID(r.UserID),
		CompletedBy: core.UserID(r.CompletedBy),
		Points:      r.Points,
		Completed:   r.Completed,
	}
	if r.FinalPoints.Valid {
		fp := int(r.FinalPoints.Int64)
		rec.FinalPoints = &fp
	}
	if r.CompletedAt.Valid {
		at := r.CompletedAt.Time
		rec.CompletedAt = &at
	}
	return rec
}

func (s *Store) ListRecords(ctx context.Context, user core.UserID) ([]core.ChoreRecord, error) {
	var rows []choreRow
	query := s.db.Rebind(`SELECT user_id, id, title, points, final_points, completed, completed_by, completed_at, position FROM chores WHERE user_id = ? ORDER BY position`)
	if err := s.db.SelectContext(ctx, &rows, query, user); err != nil {
		return nil, fmt.Errorf("failed to list chores: %w", err)
	}
	out := make([]core.ChoreRecord, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}

func (s *Store) PutRecord(ctx context.Context, rec core.ChoreRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		tx.Rebind(`SELECT EXISTS (SELECT 1 FROM chores WHERE user_id = ? AND id = ?)`),
		rec.AssignedTo, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to check chore: %w", err)
	}

	var finalPoints sql.NullInt64
	if rec.FinalPoints != nil {
		finalPoints = sql.NullInt64{Int64: int64(*rec.FinalPoints), Valid: true}
	}
	var completedAt sql.NullTime
	if rec.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *rec.CompletedAt, Valid: true}
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE chores SET title = ?, points = ?, final_points = ?, completed = ?, completed_by = ?, completed_at = ? WHERE user_id = ? AND id = ?`),
			rec.Title, rec.Points, finalPoints, rec.Completed, rec.CompletedBy, completedAt, rec.AssignedTo, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to update chore: %w", err)
		}
	} else {
		var next int
		if err := tx.GetContext(ctx, &next,
			tx.Rebind(`SELECT COALESCE(MAX(position), 0) + 1 FROM chores WHERE user_id = ?`),
			rec.AssignedTo); err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO chores (user_id, id, title, points, final_points, completed, completed_by, completed_at, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			rec.AssignedTo, rec.ID, rec.Title, rec.Points, finalPoints, rec.Completed, rec.CompletedBy, completedAt, next)
		if err != nil {
			return fmt.Errorf("failed to insert chore: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (s *Store) CompleteRecord(ctx context.Context, user core.UserID, choreID string, at time.Time) (core.ChoreRecord, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row choreRow
	err = tx.GetContext(ctx, &row,
		tx.Rebind(`SELECT user_id, id, title, points, final_points, completed, completed_by, completed_at, position FROM chores WHERE user_id = ? AND id = ?`),
		user, choreID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ChoreRecord{}, engine.ErrChoreNotFound
	}
	if err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to fetch chore: %w", err)
	}
	if row.Completed {
		return row.record(), engine.ErrAlreadyCompleted
	}

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`UPDATE chores SET completed = ?, completed_by = ?, completed_at = ? WHERE user_id = ? AND id = ?`),
		true, user, at, user, choreID)
	if err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to complete chore: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to commit: %w", err)
	}

	row.Completed = true
	row.CompletedBy = string(user)
	row.CompletedAt = sql.NullTime{Time: at, Valid: true}
	return row.record(), nil
}

func (s *Store) LifetimePoints(ctx context.Context, user core.UserID) (int, error) {
	var points int
	err := s.db.GetContext(ctx, &points,
		s.db.Rebind(`SELECT points FROM user_lifetime WHERE user_id = ?`), user)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch lifetime points: %w", err)
	}
	return points, nil
}

func (s *Store) AddLifetimePoints(ctx context.Context, user core.UserID, delta int) (int, error) {
	if delta <= 0 {
		return s.LifetimePoints(ctx, user)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current,
		tx.Rebind(`SELECT points FROM user_lifetime WHERE user_id = ?`), user)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO user_lifetime (user_id, points) VALUES (?, ?)`),
			user, delta); err != nil {
			return 0, fmt.Errorf("failed to insert lifetime points: %w", err)
		}
		current = delta
	case err != nil:
		return 0, fmt.Errorf("failed to fetch lifetime points: %w", err)
	default:
		current += delta
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE user_lifetime SET points = ? WHERE user_id = ?`),
			current, user); err != nil {
			return 0, fmt.Errorf("failed to update lifetime points: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return current, nil
}

var _ engine.Storage = (*Store)(nil)
