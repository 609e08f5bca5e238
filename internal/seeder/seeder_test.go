package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/database/databasetest"
	"github.com/Additional-Code/repairhub/internal/entity"
	orderrepo "github.com/Additional-Code/repairhub/internal/repository/order"
	techrepo "github.com/Additional-Code/repairhub/internal/repository/technician"
)

func TestSeedIsIdempotent(t *testing.T) {
	conns := databasetest.New(t)
	seed := New(conns, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, seed.All(ctx))
	require.NoError(t, seed.All(ctx))

	available, err := techrepo.NewRepository(conns).ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	orders := orderrepo.NewRepository(conns)
	pending, err := orders.ListByStatus(ctx, entity.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Nil(t, pending[0].TechnicianID)

	assigned, err := orders.ListByTechnician(ctx, "tech-1001")
	require.NoError(t, err)
	assert.Len(t, assigned, 2)
}
