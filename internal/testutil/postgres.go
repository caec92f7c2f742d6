// Package testutil provides integration-test helpers for the save store.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emberfall/gamemaster/internal/config"
	"github.com/emberfall/gamemaster/internal/storage/postgres"
)

// savesSchema mirrors migrations/000001_create_saves_table.up.sql so tests
// do not need the migrate binary.
const savesSchema = `
	CREATE TABLE IF NOT EXISTS saves (
		id               BIGSERIAL    PRIMARY KEY,
		name             VARCHAR(128) NOT NULL UNIQUE,
		slot             SMALLINT,
		character_name   VARCHAR(64)  NOT NULL,
		level            INT          NOT NULL DEFAULT 1,
		location         TEXT         NOT NULL DEFAULT 'unknown',
		playtime_minutes INT          NOT NULL DEFAULT 0,
		payload          JSONB        NOT NULL,
		created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_saves_slot ON saves (slot);
	CREATE INDEX IF NOT EXISTS idx_saves_updated_at ON saves (updated_at DESC);
`

// SavesDB is a disposable PostgreSQL instance with the saves schema applied.
type SavesDB struct {
	DB     *pgxpool.Pool
	Config config.DatabaseConfig
}

// StartSavesDB launches a postgres container, applies the saves schema, and
// registers cleanup on t. Callers get a ready-to-query pool.
//
// Precondition: Docker must be available.
func StartSavesDB(t *testing.T) *SavesDB {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "gm_test",
				"POSTGRES_PASSWORD": "gm_test",
				"POSTGRES_DB":       "gm_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("resolving mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "gm_test",
		Password:        "gm_test",
		Name:            "gm_test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(pool.Close)

	if _, err := pool.DB().Exec(ctx, savesSchema); err != nil {
		t.Fatalf("applying saves schema: %v", err)
	}
	t.Logf("saves database ready [%s]", time.Since(start))

	return &SavesDB{DB: pool.DB(), Config: dbCfg}
}
