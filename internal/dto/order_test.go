package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/projection"
)

func TestNewOrderResponse(t *testing.T) {
	order := *entity.NewOrder("o1", time.Now())
	order.CustomerID = "c1"
	order.MediaURLs = nil

	resp := NewOrderResponse(order, projection.Viewer{ID: "t1", Role: lifecycle.RoleTechnician})
	assert.Equal(t, projection.ActionAccept, resp.NextAction)
	assert.Equal(t, 0, resp.ProgressPercent)
	assert.NotNil(t, resp.MediaURLs)
	assert.Nil(t, resp.Coordinates)

	order.Status = entity.StatusRepairing
	tech := "t1"
	order.TechnicianID = &tech
	order.SetCoordinates(&entity.Coordinates{Latitude: 1, Longitude: 2})

	resp = NewOrderResponse(order, projection.Viewer{})
	assert.Equal(t, projection.ActionNone, resp.NextAction)
	assert.Equal(t, 70, resp.ProgressPercent)
	assert.Equal(t, &CoordinatesResponse{Latitude: 1, Longitude: 2}, resp.Coordinates)
}
