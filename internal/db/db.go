package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/AdamBeresnev/prompt-tournament/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// InitDB opens the configured database. SQLite connections take the write lock when a
// transaction begins so concurrent result submissions queue instead of failing on upgrade.
func InitDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.DSN
	if cfg.Driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	slog.Info("Database connected.", "driver", cfg.Driver)
	return db, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

func newMigrate(db *sqlx.DB) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch db.DriverName() {
	case "pgx":
		driver, err = migratepgx.WithInstance(db.DB, &migratepgx.Config{})
	case "sqlite3":
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate driver instance: %w", err)
	}

	source, err := iofs.New(migrations.FS, migrations.Dir(db.DriverName()))
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.DriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending up migration.
func RunMigrations(db *sqlx.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// RollbackMigrations reverts the given number of migrations, all of them when steps <= 0.
func RollbackMigrations(db *sqlx.DB, steps int) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}
