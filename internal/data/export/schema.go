package export

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  file TEXT NOT NULL,
  language TEXT NOT NULL,
  policy TEXT NOT NULL,
  analyzed_at_utc TEXT NOT NULL,
  nodes_visited INTEGER NOT NULL DEFAULT 0,
  dropped_occurrences INTEGER NOT NULL DEFAULT 0,
  skipped_declarators INTEGER NOT NULL DEFAULT 0,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
CREATE TABLE IF NOT EXISTS declarations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
  ordinal INTEGER NOT NULL,
  name TEXT NOT NULL,
  scope TEXT NOT NULL,
  line INTEGER NOT NULL,
  column_no INTEGER NOT NULL,
  length INTEGER NOT NULL,
  UNIQUE (run_id, ordinal)
);
CREATE TABLE IF NOT EXISTS refs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  declaration_id INTEGER NOT NULL REFERENCES declarations(id) ON DELETE CASCADE,
  ordinal INTEGER NOT NULL,
  context TEXT NOT NULL,
  line INTEGER NOT NULL,
  column_no INTEGER NOT NULL,
  length INTEGER NOT NULL,
  UNIQUE (declaration_id, ordinal)
);
CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file);
CREATE INDEX IF NOT EXISTS idx_declarations_name ON declarations(name);
CREATE INDEX IF NOT EXISTS idx_refs_context ON refs(context);
`,
	},
	{
		version: 2,
		sql: `
CREATE VIEW IF NOT EXISTS lineage AS
SELECT
  d.run_id AS run_id,
  d.name AS name,
  'declared' AS event,
  d.scope AS scope,
  d.line AS line,
  d.column_no AS column_no,
  d.ordinal AS decl_ordinal,
  -1 AS ref_ordinal
FROM declarations d
UNION ALL
SELECT
  d.run_id, d.name, 'referenced', r.context, r.line, r.column_no, d.ordinal, r.ordinal
FROM refs r
JOIN declarations d ON d.id = r.declaration_id;
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
