package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the lifecycle state of a repair order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusPickingUp  Status = "picking_up"
	StatusDiagnosing Status = "diagnosing"
	StatusRepairing  Status = "repairing"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order, cancelled last.
var Statuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusPickingUp,
	StatusDiagnosing,
	StatusRepairing,
	StatusDelivering,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ServiceType selects how the device reaches the technician.
type ServiceType string

const (
	ServiceMobileTechnician ServiceType = "mobile-technician"
	ServicePickupDelivery   ServiceType = "pickup-delivery"
)

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	return t == ServiceMobileTechnician || t == ServicePickupDelivery
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Order represents a repair request stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID               string      `bun:"id,pk" json:"id"`
	CustomerID       string      `bun:"customer_id,notnull" json:"customer_id"`
	TechnicianID     *string     `bun:"technician_id" json:"technician_id,omitempty"`
	DeviceBrand      string      `bun:"device_brand,notnull" json:"device_brand"`
	DeviceModel      string      `bun:"device_model,notnull" json:"device_model"`
	IssueDescription string      `bun:"issue_description,notnull" json:"issue_description"`
	EstimatedPrice   float64     `bun:"estimated_price,notnull" json:"estimated_price"`
	ServiceType      ServiceType `bun:"service_type,notnull" json:"service_type"`
	Location         string      `bun:"location,notnull" json:"location"`
	Latitude         *float64    `bun:"latitude" json:"latitude,omitempty"`
	Longitude        *float64    `bun:"longitude" json:"longitude,omitempty"`
	MediaURLs        []string    `bun:"media_urls,type:jsonb" json:"media_urls"`
	Status           Status      `bun:"status,notnull" json:"status"`
	Revision         int64       `bun:"revision,notnull" json:"revision"`
	CreatedAt        time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time   `bun:"updated_at,notnull" json:"updated_at"`
}

// NewOrder returns a pending, unassigned order stamped with now.
func NewOrder(id string, now time.Time) *Order {
	now = now.UTC().Truncate(time.Microsecond)
	return &Order{
		ID:          id,
		ServiceType: ServiceMobileTechnician,
		MediaURLs:   []string{},
		Status:      StatusPending,
		Revision:    1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Coordinates returns the order's position when both components are present.
func (o *Order) Coordinates() (Coordinates, bool) {
	if o.Latitude == nil || o.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *o.Latitude, Longitude: *o.Longitude}, true
}

// SetCoordinates stores or clears the order's position.
func (o *Order) SetCoordinates(c *Coordinates) {
	if c == nil {
		o.Latitude, o.Longitude = nil, nil
		return
	}
	lat, lng := c.Latitude, c.Longitude
	o.Latitude, o.Longitude = &lat, &lng
}

// AssignedTo reports whether technicianID is the order's assigned technician.
func (o *Order) AssignedTo(technicianID string) bool {
	return o.TechnicianID != nil && *o.TechnicianID == technicianID && technicianID != ""
}
