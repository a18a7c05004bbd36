package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"tally/internal/config"
)

// ErrNotFound is returned when a capture record does not exist.
var ErrNotFound = errors.New("capture record not found")

// Record is one completed capture ready for durable storage.
type Record struct {
	SessionID   string
	CommunityID string
	OwnerID     string
	Workflow    string
	CompletedAt time.Time
	// Totals holds the summed per-name scores across all rounds.
	Totals map[string]int64
	// Rounds holds the per-round breakdown in completion order.
	Rounds []map[string]int64
	// Unresolved lists names that never finalized in any round.
	Unresolved []string
}

// Summary is a listing row for stored captures.
type Summary struct {
	ID          int64
	SessionID   string
	CommunityID string
	OwnerID     string
	Workflow    string
	CompletedAt time.Time
	Names       int
}

// Store persists capture results in SQLite. Open also takes a file lock on
// the state directory so two processes cannot write the same database.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the results database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "tally.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another tally instance holds the state directory")
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "tally.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database and releases the state lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// SaveCapture stores a completed capture transactionally: the header row, the
// summed totals as round zero, each per-round breakdown, and the unresolved
// gap list.
func (s *Store) SaveCapture(ctx context.Context, record Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO capture_results (session_id, community_id, owner_id, workflow, rounds, completed_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.CommunityID,
		record.OwnerID,
		record.Workflow,
		len(record.Rounds),
		record.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert capture: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	insertScore := func(round int, name string, score int64) error {
		_, execErr := tx.ExecContext(
			ctx,
			`INSERT INTO capture_scores (result_id, round, name, score) VALUES (?, ?, ?, ?)`,
			id, round, name, score,
		)
		return execErr
	}

	for name, score := range record.Totals {
		if err := insertScore(0, name, score); err != nil {
			return fmt.Errorf("insert total for %s: %w", name, err)
		}
	}
	for i, round := range record.Rounds {
		for name, score := range round {
			if err := insertScore(i+1, name, score); err != nil {
				return fmt.Errorf("insert round %d score for %s: %w", i+1, name, err)
			}
		}
	}
	for _, name := range record.Unresolved {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO capture_gaps (result_id, name) VALUES (?, ?)`,
			id, name,
		); err != nil {
			return fmt.Errorf("insert gap for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// ListRecent returns the newest captures for a community, or for all
// communities when communityID is empty.
func (s *Store) ListRecent(ctx context.Context, communityID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT r.id, r.session_id, r.community_id, r.owner_id, r.workflow, r.completed_at,
                 (SELECT COUNT(*) FROM capture_scores s WHERE s.result_id = r.id AND s.round = 0)
          FROM capture_results r`
	args := []any{}
	if communityID != "" {
		query += " WHERE r.community_id = ?"
		args = append(args, communityID)
	}
	query += " ORDER BY r.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var summary Summary
		var completed string
		if err := rows.Scan(&summary.ID, &summary.SessionID, &summary.CommunityID,
			&summary.OwnerID, &summary.Workflow, &completed, &summary.Names); err != nil {
			return nil, fmt.Errorf("scan capture row: %w", err)
		}
		summary.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// LoadRecord reads one stored capture back, including the per-round breakdown.
func (s *Store) LoadRecord(ctx context.Context, id int64) (Record, error) {
	var record Record
	var completed string
	var rounds int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT session_id, community_id, owner_id, workflow, rounds, completed_at
         FROM capture_results WHERE id = ?`,
		id,
	).Scan(&record.SessionID, &record.CommunityID, &record.OwnerID, &record.Workflow, &rounds, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load capture %d: %w", id, err)
	}
	record.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
	record.Totals = make(map[string]int64)
	record.Rounds = make([]map[string]int64, rounds)
	for i := range record.Rounds {
		record.Rounds[i] = make(map[string]int64)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT round, name, score FROM capture_scores WHERE result_id = ?`,
		id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("load scores %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var round int
		var name string
		var score int64
		if err := rows.Scan(&round, &name, &score); err != nil {
			return Record{}, fmt.Errorf("scan score row: %w", err)
		}
		if round == 0 {
			record.Totals[name] = score
		} else if round >= 1 && round <= rounds {
			record.Rounds[round-1][name] = score
		}
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}

	gapRows, err := s.db.QueryContext(
		ctx,
		`SELECT name FROM capture_gaps WHERE result_id = ?`,
		id,
	)
	if err != nil {
		return Record{}, fmt.Errorf("load gaps %d: %w", id, err)
	}
	defer gapRows.Close()
	for gapRows.Next() {
		var name string
		if err := gapRows.Scan(&name); err != nil {
			return Record{}, fmt.Errorf("scan gap row: %w", err)
		}
		record.Unresolved = append(record.Unresolved, name)
	}
	return record, gapRows.Err()
}
