// Package database records the history of generation runs in SQLite or
// PostgreSQL so any floor can be reproduced from its seed.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and provides run history operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database selected by cfg.Driver and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	var (
		dialect Dialect
		dsn     string
	)

	switch cfg.Driver {
	case "", "sqlite":
		dialect = NewDialect(DialectSQLite)
		dsn = cfg.SQLitePath
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	case "postgres":
		dialect = NewDialect(DialectPostgres)
		dsn = cfg.Postgres.DSN()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "postgres" {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	d := &Database{
		db:      db,
		dialect: dialect,
		qb:      NewQueryBuilder(dialect),
	}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	pk := d.dialect.PrimaryKey()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS generation_runs (
			id ` + pk + `,
			seed BIGINT NOT NULL,
			floor INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			target INTEGER NOT NULL,
			room_count INTEGER NOT NULL,
			spawn_x INTEGER NOT NULL DEFAULT 0,
			spawn_y INTEGER NOT NULL DEFAULT 0,
			exit_x INTEGER NOT NULL DEFAULT 0,
			exit_y INTEGER NOT NULL DEFAULT 0,
			exit_room INTEGER NOT NULL DEFAULT -1,
			success INTEGER NOT NULL DEFAULT 0,
			state TEXT NOT NULL DEFAULT '',
			failure TEXT NOT NULL DEFAULT '',
			warnings TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS generation_rooms (
			id ` + pk + `,
			run_id BIGINT NOT NULL REFERENCES generation_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			UNIQUE(run_id, position)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_generation_runs_seed ON generation_runs(seed)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_rooms_run_id ON generation_rooms(run_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the SQL dialect of the connection.
func (d *Database) Dialect() Dialect {
	return d.dialect
}
