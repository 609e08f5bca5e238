package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Technician holds the availability flag that gates new-order notifications.
type Technician struct {
	bun.BaseModel `bun:"table:technicians"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	IsAvailable bool      `bun:"is_available,notnull" json:"is_available"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
