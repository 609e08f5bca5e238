package technician

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/repairhub/internal/database/databasetest"
	"github.com/Additional-Code/repairhub/internal/entity"
)

func TestUpsertAndListAvailable(t *testing.T) {
	repo := NewRepository(databasetest.New(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &entity.Technician{ID: "t2", Name: "Sara", IsAvailable: true, UpdatedAt: now}))
	require.NoError(t, repo.Upsert(ctx, &entity.Technician{ID: "t1", Name: "Omar", IsAvailable: true, UpdatedAt: now}))
	require.NoError(t, repo.Upsert(ctx, &entity.Technician{ID: "t3", Name: "Lina", IsAvailable: false, UpdatedAt: now}))

	available, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "t1", available[0].ID)
	assert.Equal(t, "t2", available[1].ID)

	require.NoError(t, repo.Upsert(ctx, &entity.Technician{ID: "t1", Name: "Omar", IsAvailable: false, UpdatedAt: now.Add(time.Minute)}))

	available, err = repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "t2", available[0].ID)

	t1, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, t1.IsAvailable)

	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
