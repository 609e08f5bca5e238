// Package databasetest opens throwaway in-memory SQLite databases for package tests.
package databasetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database"
	"github.com/Additional-Code/repairhub/internal/entity"
)

// New returns connections to a private in-memory database with the schema created.
// A single pooled connection serialises statements the way a real primary would.
func New(t testing.TB) *database.Connections {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conns, err := database.Open(config.Database{
		Driver:       "sqlite",
		WriterDSN:    dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Writer.Close() })

	ctx := context.Background()
	for _, model := range []any{(*entity.Order)(nil), (*entity.Technician)(nil)} {
		_, err := conns.Writer.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return conns
}
