package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Dialect selects the DDL flavour.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               UUID        PRIMARY KEY,
  storage_name     TEXT        NOT NULL,
  storage_path     TEXT        NOT NULL UNIQUE,
  display_name     TEXT        NOT NULL,
  mime_type        TEXT        NOT NULL,
  size_bytes       BIGINT      NOT NULL CHECK (size_bytes >= 0),
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  ai_description   TEXT        NOT NULL DEFAULT '',
  ai_document_type TEXT        NOT NULL DEFAULT '',
  ai_country       TEXT        NOT NULL DEFAULT '',
  ai_typical_use   TEXT        NOT NULL DEFAULT '',
  ai_keywords      JSONB       NOT NULL DEFAULT '[]'::jsonb
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);`,
	},
	{
		Name: "create_index_documents_document_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_document_type ON documents (ai_document_type);`,
	},
	{
		Name: "create_table_cost_records",
		SQL: `CREATE TABLE IF NOT EXISTS cost_records (
  id                  UUID             PRIMARY KEY,
  operation_type      TEXT             NOT NULL CHECK (operation_type IN ('analysis', 'search')),
  related_document_id UUID             NULL,
  input_tokens        BIGINT           NOT NULL CHECK (input_tokens >= 0),
  output_tokens       BIGINT           NOT NULL CHECK (output_tokens >= 0),
  cost_usd            DOUBLE PRECISION NOT NULL CHECK (cost_usd >= 0),
  cost_brl            DOUBLE PRECISION NOT NULL CHECK (cost_brl >= 0),
  model               TEXT             NOT NULL,
  created_at          TIMESTAMPTZ      NOT NULL DEFAULT now(),
  details             JSONB            NULL
);`,
	},
	{
		Name: "create_index_cost_records_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cost_records_created_at ON cost_records (created_at);`,
	},
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id               TEXT      PRIMARY KEY,
  storage_name     TEXT      NOT NULL,
  storage_path     TEXT      NOT NULL UNIQUE,
  display_name     TEXT      NOT NULL,
  mime_type        TEXT      NOT NULL,
  size_bytes       INTEGER   NOT NULL CHECK (size_bytes >= 0),
  created_at       TIMESTAMP NOT NULL,
  ai_description   TEXT      NOT NULL DEFAULT '',
  ai_document_type TEXT      NOT NULL DEFAULT '',
  ai_country       TEXT      NOT NULL DEFAULT '',
  ai_typical_use   TEXT      NOT NULL DEFAULT '',
  ai_keywords      TEXT      NOT NULL DEFAULT '[]'
);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_table_cost_records",
		SQL: `CREATE TABLE IF NOT EXISTS cost_records (
  id                  TEXT      PRIMARY KEY,
  operation_type      TEXT      NOT NULL CHECK (operation_type IN ('analysis', 'search')),
  related_document_id TEXT      NULL,
  input_tokens        INTEGER   NOT NULL CHECK (input_tokens >= 0),
  output_tokens       INTEGER   NOT NULL CHECK (output_tokens >= 0),
  cost_usd            REAL      NOT NULL CHECK (cost_usd >= 0),
  cost_brl            REAL      NOT NULL CHECK (cost_brl >= 0),
  model               TEXT      NOT NULL,
  created_at          TIMESTAMP NOT NULL,
  details             TEXT      NULL
);`,
	},
	{
		Name: "create_index_cost_records_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cost_records_created_at ON cost_records (created_at);`,
	},
}

// sentinelQuery reports whether the last table of the schema already exists.
func sentinelQuery(d Dialect) string {
	if d == SQLite {
		return "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'cost_records'"
	}
	return "SELECT to_regclass('public.cost_records') IS NOT NULL"
}

func stepsFor(d Dialect) []migrationStep {
	if d == SQLite {
		return sqliteSteps
	}
	return postgresSteps
}

// EnsureMigrated checks if the 'cost_records' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect Dialect, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Str("dialect", string(dialect)).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Msg("checking schema")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery(dialect)).Scan(&exists); err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Str("status", "error").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Msg("applying schema")

	for _, step := range stepsFor(dialect) {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema migrated")

	return nil
}
