package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// DB wraps the sql database handle
type DB struct {
	*sql.DB
}

// NewDB opens a connection to the database
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Migrate creates the tables if they do not exist
func (db *DB) Migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS training_executions (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			pipeline_execution_arn TEXT,
			training_status TEXT NOT NULL,
			exec_status_changes JSONB NOT NULL DEFAULT '[]',
			step_status_changes JSONB NOT NULL DEFAULT '[]',
			model_info JSONB,
			endpoint_info JSONB,
			version BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_executions_pipeline_arn
			ON training_executions (pipeline_execution_arn);

		CREATE TABLE IF NOT EXISTS endpoint_maintenance (
			id TEXT PRIMARY KEY,
			endpoint_name TEXT NOT NULL,
			endpoint_arn TEXT NOT NULL,
			config_name TEXT NOT NULL,
			config_arn TEXT NOT NULL,
			status TEXT NOT NULL,
			last_modified_time TIMESTAMPTZ NOT NULL,
			last_invoke_time TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_endpoint_maintenance_arn
			ON endpoint_maintenance (endpoint_arn);

		CREATE TABLE IF NOT EXISTS training_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			predicted_asset TEXT NOT NULL,
			deepar_meta JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS predictions (
			id TEXT PRIMARY KEY,
			template_id TEXT NOT NULL,
			window_items JSONB NOT NULL,
			prediction JSONB NOT NULL,
			training_end_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}
