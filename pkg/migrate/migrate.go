package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

func gooseDialect(driver string) (string, error) {
	switch driver {
	case config.DBDriverSQLite:
		return "sqlite3", nil
	case config.DBDriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

// CreateSQLMigration scaffolds a new timestamped SQL migration file.
func CreateSQLMigration(dir, name string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	return goose.Create(nil, dir, name, "sql")
}

// Run executes a goose command against the configured dialect.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
