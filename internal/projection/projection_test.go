package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
)

func makeOrder(id, customer string, technician string, status entity.Status) entity.Order {
	order := *entity.NewOrder(id, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	order.CustomerID = customer
	order.Status = status
	if technician != "" {
		order.TechnicianID = &technician
	}
	return order
}

func TestNextAction(t *testing.T) {
	tech := Viewer{ID: "t1", Role: lifecycle.RoleTechnician}
	other := Viewer{ID: "t2", Role: lifecycle.RoleTechnician}
	customer := Viewer{ID: "c1", Role: lifecycle.RoleCustomer}

	tests := []struct {
		name   string
		order  entity.Order
		viewer Viewer
		want   Action
	}{
		{"technician sees pending", makeOrder("o1", "c1", "", entity.StatusPending), other, ActionAccept},
		{"customer sees pending", makeOrder("o1", "c1", "", entity.StatusPending), customer, ActionNone},
		{"assigned technician accepted", makeOrder("o1", "c1", "t1", entity.StatusAccepted), tech, Action(entity.StatusPickingUp)},
		{"assigned technician delivering", makeOrder("o1", "c1", "t1", entity.StatusDelivering), tech, Action(entity.StatusCompleted)},
		{"other technician", makeOrder("o1", "c1", "t1", entity.StatusRepairing), other, ActionNone},
		{"completed", makeOrder("o1", "c1", "t1", entity.StatusCompleted), tech, ActionNone},
		{"cancelled", makeOrder("o1", "c1", "t1", entity.StatusCancelled), tech, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAction(tt.order, tt.viewer))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	want := map[entity.Status]int{
		entity.StatusPending:    0,
		entity.StatusAccepted:   20,
		entity.StatusPickingUp:  40,
		entity.StatusDiagnosing: 50,
		entity.StatusRepairing:  70,
		entity.StatusDelivering: 90,
		entity.StatusCompleted:  100,
		entity.StatusCancelled:  0,
	}
	for status, pct := range want {
		assert.Equal(t, pct, ProgressPercent(makeOrder("o", "c", "t", status)), status)
	}
}

func TestFilterByRole(t *testing.T) {
	orders := []entity.Order{
		makeOrder("o1", "c1", "", entity.StatusPending),
		makeOrder("o2", "c1", "t1", entity.StatusRepairing),
		makeOrder("o3", "c1", "t1", entity.StatusCompleted),
		makeOrder("o4", "c2", "t1", entity.StatusCancelled),
		makeOrder("o5", "c2", "t2", entity.StatusCompleted),
	}

	ids := func(in []entity.Order) []string {
		out := make([]string, 0, len(in))
		for _, o := range in {
			out = append(out, o.ID)
		}
		return out
	}

	customer := Viewer{ID: "c1", Role: lifecycle.RoleCustomer}
	assert.Equal(t, []string{"o1", "o2"}, ids(FilterByRole(orders, customer, FilterActive)))
	assert.Equal(t, []string{"o3"}, ids(FilterByRole(orders, customer, FilterCompleted)))
	assert.Equal(t, []string{"o1", "o2", "o3"}, ids(FilterByRole(orders, customer, FilterAll)))

	tech := Viewer{ID: "t1", Role: lifecycle.RoleTechnician}
	assert.Equal(t, []string{"o2"}, ids(FilterByRole(orders, tech, FilterActive)))
	assert.Equal(t, []string{"o3"}, ids(FilterByRole(orders, tech, FilterCompleted)))
	assert.Equal(t, []string{"o2", "o3", "o4"}, ids(FilterByRole(orders, tech, FilterAll)))

	assert.Empty(t, FilterByRole(orders, Viewer{ID: "x"}, FilterAll))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter(" Active ")
	require.NoError(t, err)
	assert.Equal(t, FilterActive, f)

	_, err = ParseFilter("archived")
	assert.Error(t, err)
}
