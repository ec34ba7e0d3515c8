//go:build integration_test || all_tests

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// NewTestPool connects to the postgres the repo integration tests run against
// (POSTGRES_HOST, default localhost) and makes sure the schema exists.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	t.Logf("using postgres host: %s:%s", host, port)

	dbPool, err := NewDBPool(timeoutCtx, NewDBPoolParams{
		DBHost:     host,
		DBPort:     port,
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
		DBName:     "crossfield_test",
	})
	require.NoError(t, err)

	_, err = dbPool.Exec(timeoutCtx, SchemaSQL)
	require.NoError(t, err)

	t.Cleanup(dbPool.Close)
	return dbPool
}
