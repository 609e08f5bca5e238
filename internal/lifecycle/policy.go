// Package lifecycle holds the repair order state machine: which status changes are
// legal, who may perform them, and what each change does to the order record.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

// Role identifies the kind of party acting on an order.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTechnician Role = "technician"
	RoleSystem     Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleTechnician || r == RoleSystem
}

// Actor is the party requesting a transition. Available is only consulted for the
// accept transition.
type Actor struct {
	ID        string
	Role      Role
	Available bool
}

// Request describes a single requested status change.
type Request struct {
	To    entity.Status
	Actor Actor
	// ExpectedStatus, when set, is the status the caller last observed.
	ExpectedStatus *entity.Status
}

// forward is the fixed working sequence; cancelled is reachable from every
// non-terminal entry.
var forward = map[entity.Status]entity.Status{
	entity.StatusPending:    entity.StatusAccepted,
	entity.StatusAccepted:   entity.StatusPickingUp,
	entity.StatusPickingUp:  entity.StatusDiagnosing,
	entity.StatusDiagnosing: entity.StatusRepairing,
	entity.StatusRepairing:  entity.StatusDelivering,
	entity.StatusDelivering: entity.StatusCompleted,
}

var progress = map[entity.Status]int{
	entity.StatusPending:    0,
	entity.StatusAccepted:   20,
	entity.StatusPickingUp:  40,
	entity.StatusDiagnosing: 50,
	entity.StatusRepairing:  70,
	entity.StatusDelivering: 90,
	entity.StatusCompleted:  100,
	entity.StatusCancelled:  0,
}

// Next returns the single forward status after from.
func Next(from entity.Status) (entity.Status, bool) {
	to, ok := forward[from]
	return to, ok
}

// Allowed reports whether from -> to is an edge of the state machine.
func Allowed(from, to entity.Status) bool {
	if from.Terminal() || !from.Valid() {
		return false
	}
	if to == entity.StatusCancelled {
		return true
	}
	next, ok := forward[from]
	return ok && next == to
}

// Progress maps a status onto the percentage shown in progress bars.
func Progress(s entity.Status) int {
	return progress[s]
}

// NextTimestamp returns now, clamped so it is strictly after prev at microsecond
// precision.
func NextTimestamp(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	floor := prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	if now.Before(floor) {
		return floor
	}
	return now
}

// Apply validates req against order and returns the order as it must be persisted.
// The input order is not modified.
func Apply(order entity.Order, req Request, now time.Time) (entity.Order, error) {
	from, to := order.Status, req.To

	if req.ExpectedStatus != nil && *req.ExpectedStatus != from {
		return order, errorbank.ConcurrentModification("order changed since it was last read",
			transitionDetails(order, to),
			errorbank.WithDetail("expected", string(*req.ExpectedStatus)),
		)
	}
	if from.Terminal() {
		return order, illegal(order, to)
	}
	if to == entity.StatusAccepted && from != entity.StatusPending && lostAcceptRace(order, req.Actor) {
		return order, errorbank.ConcurrentModification("order already taken by another technician",
			transitionDetails(order, to),
		)
	}
	if !Allowed(from, to) {
		return order, illegal(order, to)
	}
	if err := authorize(order, to, req.Actor); err != nil {
		return order, err
	}

	next := order
	if to == entity.StatusAccepted {
		technicianID := req.Actor.ID
		next.TechnicianID = &technicianID
	}
	next.Status = to
	next.Revision = order.Revision + 1
	next.UpdatedAt = NextTimestamp(order.UpdatedAt, now)
	return next, nil
}

// lostAcceptRace reports whether actor is a technician other than the one
// holding order. Anyone else asking to accept a taken order is making an
// illegal request, not losing a race.
func lostAcceptRace(order entity.Order, actor Actor) bool {
	return actor.Role == RoleTechnician && !order.AssignedTo(actor.ID)
}

func authorize(order entity.Order, to entity.Status, actor Actor) error {
	switch {
	case to == entity.StatusAccepted:
		if actor.Role != RoleTechnician || actor.ID == "" {
			return unauthorized(order, to, actor, "only technicians may accept orders")
		}
		if !actor.Available {
			return unauthorized(order, to, actor, "technician is not available")
		}
		return nil
	case to == entity.StatusCancelled:
		if actor.Role == RoleSystem {
			return nil
		}
		if actor.Role == RoleCustomer && actor.ID != "" && actor.ID == order.CustomerID {
			return nil
		}
		if order.Status != entity.StatusPending && actor.Role == RoleTechnician && order.AssignedTo(actor.ID) {
			return nil
		}
		return unauthorized(order, to, actor, "actor may not cancel this order")
	default:
		if actor.Role == RoleTechnician && order.AssignedTo(actor.ID) {
			return nil
		}
		return unauthorized(order, to, actor, "only the assigned technician may advance this order")
	}
}

func illegal(order entity.Order, to entity.Status) error {
	return errorbank.IllegalTransition(
		fmt.Sprintf("cannot move order from %s to %s", order.Status, to),
		transitionDetails(order, to),
	)
}

func unauthorized(order entity.Order, to entity.Status, actor Actor, message string) error {
	return errorbank.UnauthorizedTransition(message,
		transitionDetails(order, to),
		errorbank.WithDetail("actor_id", actor.ID),
		errorbank.WithDetail("actor_role", string(actor.Role)),
	)
}

func transitionDetails(order entity.Order, to entity.Status) errorbank.Option {
	return errorbank.WithDetails(map[string]any{
		"order_id": order.ID,
		"from":     string(order.Status),
		"to":       string(to),
	})
}
