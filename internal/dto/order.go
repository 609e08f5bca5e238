package dto

import (
	"time"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/projection"
)

// CoordinatesResponse is a latitude/longitude pair.
type CoordinatesResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID               string               `json:"id"`
	CustomerID       string               `json:"customer_id"`
	TechnicianID     *string              `json:"technician_id"`
	DeviceBrand      string               `json:"device_brand"`
	DeviceModel      string               `json:"device_model"`
	IssueDescription string               `json:"issue_description"`
	EstimatedPrice   float64              `json:"estimated_price"`
	ServiceType      entity.ServiceType   `json:"service_type"`
	Location         string               `json:"location"`
	Coordinates      *CoordinatesResponse `json:"coordinates,omitempty"`
	MediaURLs        []string             `json:"media_urls"`
	Status           entity.Status        `json:"status"`
	Revision         int64                `json:"revision"`
	ProgressPercent  int                  `json:"progress_percent"`
	NextAction       projection.Action    `json:"next_action,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// NewOrderResponse projects order for viewer. A zero viewer leaves NextAction empty.
func NewOrderResponse(order entity.Order, viewer projection.Viewer) OrderResponse {
	resp := OrderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		TechnicianID:     order.TechnicianID,
		DeviceBrand:      order.DeviceBrand,
		DeviceModel:      order.DeviceModel,
		IssueDescription: order.IssueDescription,
		EstimatedPrice:   order.EstimatedPrice,
		ServiceType:      order.ServiceType,
		Location:         order.Location,
		MediaURLs:        order.MediaURLs,
		Status:           order.Status,
		Revision:         order.Revision,
		ProgressPercent:  projection.ProgressPercent(order),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	if resp.MediaURLs == nil {
		resp.MediaURLs = []string{}
	}
	if c, ok := order.Coordinates(); ok {
		resp.Coordinates = &CoordinatesResponse{Latitude: c.Latitude, Longitude: c.Longitude}
	}
	if viewer.ID != "" {
		resp.NextAction = projection.NextAction(order, viewer)
	}
	return resp
}

// NewOrderListResponse projects every order for viewer.
func NewOrderListResponse(orders []entity.Order, viewer projection.Viewer) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order, viewer))
	}
	return out
}
