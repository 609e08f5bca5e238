package migration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database"
	"github.com/Additional-Code/repairhub/internal/entity"
	orderrepo "github.com/Additional-Code/repairhub/internal/repository/order"
)

func TestMigrationsMatchModels(t *testing.T) {
	dbCfg := config.Database{
		Driver:       "sqlite",
		WriterDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	conns, err := database.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Writer.Close() })

	mig, err := New(config.Config{Database: dbCfg}, conns, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mig.Up(ctx))
	require.NoError(t, mig.Up(ctx))
	version, err := mig.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	repo := orderrepo.NewRepository(conns)
	order := entity.NewOrder("o1", time.Now())
	order.CustomerID = "c1"
	order.DeviceBrand = "Apple"
	order.DeviceModel = "iPhone 13"
	order.IssueDescription = "Screen crack"
	order.Location = "Riyadh"
	order.MediaURLs = []string{"https://cdn.example.com/a.png"}
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.MediaURLs, got.MediaURLs)

	require.NoError(t, mig.Down(ctx, 0, true))
	version, err = mig.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestGooseDialect(t *testing.T) {
	for driver, want := range map[string]string{"pg": "postgres", "postgres": "postgres", "mysql": "mysql", "sqlite": "sqlite3"} {
		got, err := gooseDialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := gooseDialect("oracle")
	assert.Error(t, err)
}
