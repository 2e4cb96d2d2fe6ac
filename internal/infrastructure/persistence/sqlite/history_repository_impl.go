package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/history"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/repository"
)

// dbExecutor is an interface for executing database queries
// Both *sql.DB and *sql.Tx implement this interface
type dbExecutor interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// HistoryRepositoryImpl implements repository.HistoryRepository with SQLite
type HistoryRepositoryImpl struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistoryRepository creates a new SQLite-based history repository
func NewHistoryRepository(db *sql.DB, now func() time.Time) *HistoryRepositoryImpl {
	if now == nil {
		now = time.Now
	}
	return &HistoryRepositoryImpl{db: db, now: now}
}

// Available reports true: a database is always a storage root
func (r *HistoryRepositoryImpl) Available() bool {
	return true
}

// Read retrieves the log of branchKey, or nil when nothing is stored
func (r *HistoryRepositoryImpl) Read(ctx context.Context, branchKey string) (*history.Log, error) {
	return r.read(ctx, r.db, branchKey)
}

func (r *HistoryRepositoryImpl) read(ctx context.Context, db dbExecutor, branchKey string) (*history.Log, error) {
	var lastUpdated string
	err := db.QueryRowContext(ctx,
		`SELECT last_updated FROM history_logs WHERE branch_key = ?`, branchKey,
	).Scan(&lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query history log: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, branch_key, type, step_id, label, timestamp, source
		FROM history_events
		WHERE branch_key = ?
		ORDER BY timestamp ASC, seq ASC
	`, branchKey)
	if err != nil {
		return nil, fmt.Errorf("query history events: %w", err)
	}
	defer rows.Close()

	events := []history.Event{}
	for rows.Next() {
		var e history.Event
		var source string
		if err := rows.Scan(&e.ID, &e.BranchKey, &e.Type, &e.StepID, &e.Label, &e.Timestamp, &source); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		e.Source = history.Source(source)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history events: %w", err)
	}

	return &history.Log{
		BranchKey:   branchKey,
		Events:      events,
		LastUpdated: lastUpdated,
	}, nil
}

// Append merges events into the branch log inside one transaction
func (r *HistoryRepositoryImpl) Append(ctx context.Context, branchKey string, events []history.Event) (*history.Log, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	log, err := r.read(ctx, tx, branchKey)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = history.NewEmptyLog(branchKey, now)
	}
	accepted := log.Merge(events, now)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history_logs (branch_key, last_updated) VALUES (?, ?)
		ON CONFLICT(branch_key) DO UPDATE SET last_updated = excluded.last_updated
	`, branchKey, log.LastUpdated); err != nil {
		return nil, fmt.Errorf("upsert history log: %w", err)
	}

	for _, e := range accepted {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO history_events (id, branch_key, type, step_id, label, timestamp, source)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.ID, branchKey, e.Type, e.StepID, e.Label, e.Timestamp, string(e.Source)); err != nil {
			return nil, fmt.Errorf("insert history event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return log, nil
}

// BranchKeys lists every stored branch key with its last update
func (r *HistoryRepositoryImpl) BranchKeys(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT branch_key, last_updated FROM history_logs`)
	if err != nil {
		return nil, fmt.Errorf("query history logs: %w", err)
	}
	defer rows.Close()

	keys := map[string]string{}
	for rows.Next() {
		var key, lastUpdated string
		if err := rows.Scan(&key, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan history log: %w", err)
		}
		keys[key] = lastUpdated
	}
	return keys, rows.Err()
}

var _ repository.HistoryRepository = (*HistoryRepositoryImpl)(nil)
