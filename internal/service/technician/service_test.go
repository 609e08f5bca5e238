package technician

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database/databasetest"
	repo "github.com/Additional-Code/repairhub/internal/repository/technician"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(Params{
		Repository: repo.NewRepository(databasetest.New(t)),
		Config:     config.Config{Orders: config.Orders{RequestTimeout: time.Second}},
		Logger:     zap.NewNop(),
	})
}

func TestSetAvailabilityCreatesThenToggles(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "t1")
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))

	tech, err := svc.SetAvailability(ctx, "t1", "Sara", true)
	require.NoError(t, err)
	assert.True(t, tech.IsAvailable)

	tech, err = svc.SetAvailability(ctx, "t1", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Sara", tech.Name)

	stored, err := svc.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
	assert.Equal(t, "Sara", stored.Name)
}

func TestSetAvailabilityDefaultsNameToID(t *testing.T) {
	svc := newService(t)

	tech, err := svc.SetAvailability(context.Background(), "t7", " ", true)
	require.NoError(t, err)
	assert.Equal(t, "t7", tech.Name)

	_, err = svc.SetAvailability(context.Background(), "  ", "x", true)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
}
