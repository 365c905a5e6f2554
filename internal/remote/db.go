package remote

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// OpenDB connects to the authority database. A postgres:// or postgresql://
// DSN uses PostgreSQL; anything else is a SQLite file path.
func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// One writer; batches are applied in a single transaction anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

// createTables uses only SQL that PostgreSQL and SQLite both accept.
func createTables(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			tenant_id  TEXT NOT NULL,
			data_type  TEXT NOT NULL,
			entity_id  TEXT NOT NULL,
			payload    TEXT NOT NULL,
			digest     TEXT NOT NULL DEFAULT '',
			deleted    BOOLEAN NOT NULL DEFAULT FALSE,
			version    BIGINT NOT NULL DEFAULT 1,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (tenant_id, data_type, entity_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sync_batches (
			id          TEXT PRIMARY KEY,
			tenant_id   TEXT NOT NULL,
			size        INTEGER NOT NULL,
			received_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			tenant_id  TEXT NOT NULL,
			channel    TEXT NOT NULL,
			recipient  TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_tenant_type ON records(tenant_id, data_type)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_batches_tenant ON sync_batches(tenant_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
