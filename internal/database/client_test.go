package database

import (
	"context"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayforge/dayforge/internal/config"
)

func newPostgresDSN(t *testing.T) string {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestNewClient_AppliesEmbeddedMigrationsAndConnects(t *testing.T) {
	dsn := newPostgresDSN(t)

	client, err := NewClient(context.Background(), config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Client.User.Create().SetID("user-1").SetTimezone("UTC").Save(context.Background())
	require.NoError(t, err)

	status, err := Health(context.Background(), client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
}

func TestNewClient_SecondRunIsNoOpMigration(t *testing.T) {
	dsn := newPostgresDSN(t)

	first, err := NewClient(context.Background(), config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	first.Close()

	second, err := NewClient(context.Background(), config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	defer second.Close()

	status, err := Health(context.Background(), second.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
}

func TestMigrations_UpThenDownThenUpAgainSucceeds(t *testing.T) {
	dsn := newPostgresDSN(t)
	ctx := context.Background()

	client, err := NewClient(ctx, config.DatabaseConfig{DSN: dsn})
	require.NoError(t, err)
	defer client.Close()

	driver, err := mpostgres.WithInstance(client.DB(), &mpostgres.Config{})
	require.NoError(t, err)
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "dayforge", driver)
	require.NoError(t, err)

	require.NoError(t, m.Down())

	require.NoError(t, m.Up())

	_, err = client.Client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	assert.NoError(t, err)
}
