package dto

import (
	"time"

	"github.com/Additional-Code/repairhub/internal/entity"
)

// TechnicianResponse is a technician profile.
type TechnicianResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsAvailable bool      `json:"is_available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTechnicianResponse converts the entity.
func NewTechnicianResponse(tech entity.Technician) TechnicianResponse {
	return TechnicianResponse{ID: tech.ID, Name: tech.Name, IsAvailable: tech.IsAvailable, UpdatedAt: tech.UpdatedAt}
}
