// Package export writes analysis results to a SQLite database for ad-hoc
// querying. Nothing here is read back by the analyzer itself.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lineage/internal/engine/lineage"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Run is one exported analysis.
type Run struct {
	RunID              string
	File               string
	Language           string
	Policy             string
	AnalyzedAt         time.Time
	NodesVisited       int
	DroppedOccurrences int
	SkippedDeclarators int
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("export path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("export path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create export directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite export %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite export %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveResult writes res as one run. Re-saving the same run id replaces it.
func (s *Store) SaveResult(ctx context.Context, res *lineage.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("save result", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := saveResultTx(ctx, tx, res); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func saveResultTx(ctx context.Context, tx *sql.Tx, res *lineage.Result) error {
	analyzedAt := res.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, res.RunID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (run_id, file, language, policy, analyzed_at_utc, nodes_visited, dropped_occurrences, skipped_declarators)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID,
		res.Path,
		res.Language,
		string(res.Policy()),
		analyzedAt.UTC().Format(time.RFC3339Nano),
		res.Stats.NodesVisited,
		res.Stats.DroppedOccurrences,
		res.Stats.SkippedDeclarators,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	declStmt, err := tx.PrepareContext(ctx, `
INSERT INTO declarations (run_id, ordinal, name, scope, line, column_no, length)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare declaration insert: %w", err)
	}
	defer declStmt.Close()

	refStmt, err := tx.PrepareContext(ctx, `
INSERT INTO refs (declaration_id, ordinal, context, line, column_no, length)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare reference insert: %w", err)
	}
	defer refStmt.Close()

	for i, decl := range res.Declarations() {
		out, err := declStmt.ExecContext(ctx, res.RunID, i, decl.Name, decl.Scope,
			decl.Location.Line, decl.Location.Column, decl.Location.Length)
		if err != nil {
			return fmt.Errorf("insert declaration %q: %w", decl.Name, err)
		}
		declID, err := out.LastInsertId()
		if err != nil {
			return fmt.Errorf("declaration id for %q: %w", decl.Name, err)
		}
		for j, ref := range decl.References {
			if _, err := refStmt.ExecContext(ctx, declID, j, ref.Context,
				ref.Location.Line, ref.Location.Column, ref.Location.Length); err != nil {
				return fmt.Errorf("insert reference of %q: %w", decl.Name, err)
			}
		}
	}
	return nil
}

// Runs lists exported runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT run_id, file, language, policy, analyzed_at_utc, nodes_visited, dropped_occurrences, skipped_declarators
FROM runs
ORDER BY analyzed_at_utc ASC, run_id ASC`)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run   Run
			tsRaw string
		)
		if err := rows.Scan(&run.RunID, &run.File, &run.Language, &run.Policy, &tsRaw,
			&run.NodesVisited, &run.DroppedOccurrences, &run.SkippedDeclarators); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.AnalyzedAt = ts.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// Lineage reads back the lineage lines of name for one run through the
// lineage view.
func (s *Store) Lineage(ctx context.Context, runID, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load lineage", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, `
SELECT event, scope
FROM lineage
WHERE run_id = ? AND name = ?
ORDER BY decl_ordinal ASC, ref_ordinal ASC, event ASC`, runID, name)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var event, scope string
		if err := rows.Scan(&event, &scope); err != nil {
			return nil, fmt.Errorf("scan lineage row: %w", err)
		}
		if event == "declared" {
			lines = append(lines, "Declared in scope: "+scope)
		} else {
			lines = append(lines, "Referenced in scope: "+scope)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lineage rows: %w", err)
	}
	return lines, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
