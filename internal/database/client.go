// Package database wires up the PostgreSQL-backed ent.Client: connection
// pooling over pgx, embedded schema migrations, and the GIN indexes that
// back the planner's full-text search over task names and brain dump notes.
package database

import (
	"context"
	stdsql "database/sql"
	"embed"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// Client wraps an *ent.Client with the underlying *sql.DB, which migrations
// and health checks need but ent does not expose.
type Client struct {
	*ent.Client
	db *stdsql.DB
}

// DB returns the underlying connection pool for health checks.
func (c *Client) DB() *stdsql.DB { return c.db }

// NewClientFromEnt wraps an already-constructed ent.Client, used by tests
// that stand up schema via Schema.Create against a testcontainers Postgres
// instead of running the embedded migrations.
func NewClientFromEnt(entClient *ent.Client, db *stdsql.DB) *Client {
	return &Client{Client: entClient, db: db}
}

// NewClient opens a pooled pgx connection per cfg, runs pending embedded
// migrations, and returns an ent.Client bound to that pool.
func NewClient(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	db, err := stdsql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(dialect.Postgres, db)
	entClient := ent.NewClient(ent.Driver(drv))

	if err := runMigrations(db); err != nil {
		_ = entClient.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Client{Client: entClient, db: db}, nil
}

// runMigrations applies pending embedded SQL migrations with golang-migrate.
// Migration files live under migrations/ and are embedded at build time, so
// a deployed binary never depends on files shipped alongside it separately.
func runMigrations(db *stdsql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "dayforge", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Don't call m.Close: it closes the database driver too, which would
	// close the *sql.DB the ent client still needs.
	return sourceDriver.Close()
}
