// Package projection derives read-only views of orders for a given viewer.
package projection

import (
	"fmt"
	"strings"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
)

// Viewer identifies who is looking at an order.
type Viewer struct {
	ID   string
	Role lifecycle.Role
}

// Action is the next thing a viewer can do to an order.
type Action string

const (
	ActionNone   Action = ""
	ActionAccept Action = "accept"
)

// Filter partitions order lists for tabbed views.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter accepts an empty string as FilterAll.
func ParseFilter(raw string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", raw)
	}
}

// NextAction returns what the viewer can do next: accept a pending order as a
// technician, or advance an order they are assigned to.
func NextAction(order entity.Order, viewer Viewer) Action {
	if viewer.Role != lifecycle.RoleTechnician || order.Status.Terminal() {
		return ActionNone
	}
	if order.Status == entity.StatusPending {
		return ActionAccept
	}
	if !order.AssignedTo(viewer.ID) {
		return ActionNone
	}
	next, ok := lifecycle.Next(order.Status)
	if !ok {
		return ActionNone
	}
	return Action(next)
}

// ProgressPercent is the progress bar value for the order's status.
func ProgressPercent(order entity.Order) int {
	return lifecycle.Progress(order.Status)
}

// FilterByRole keeps the orders that belong to the viewer and match filter,
// preserving input order.
func FilterByRole(orders []entity.Order, viewer Viewer, filter Filter) []entity.Order {
	out := make([]entity.Order, 0, len(orders))
	for _, order := range orders {
		if !visibleTo(order, viewer) {
			continue
		}
		switch filter {
		case FilterActive:
			if order.Status.Terminal() {
				continue
			}
		case FilterCompleted:
			if order.Status != entity.StatusCompleted {
				continue
			}
		}
		out = append(out, order)
	}
	return out
}

func visibleTo(order entity.Order, viewer Viewer) bool {
	switch viewer.Role {
	case lifecycle.RoleCustomer:
		return order.CustomerID == viewer.ID
	case lifecycle.RoleTechnician:
		return order.AssignedTo(viewer.ID)
	case lifecycle.RoleSystem:
		return true
	default:
		return false
	}
}
