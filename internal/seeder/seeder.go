package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/database"
	"github.com/Additional-Code/repairhub/internal/entity"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger, now: time.Now}
}

// All seeds technicians, then orders that reference them.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Technicians(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Technicians seeds example technician profiles if they are missing.
func (s *Seeder) Technicians(ctx context.Context) error {
	now := s.now().UTC().Truncate(time.Microsecond)
	samples := []entity.Technician{
		{ID: "tech-1001", Name: "Omar", IsAvailable: true, UpdatedAt: now},
		{ID: "tech-1002", Name: "Lina", IsAvailable: true, UpdatedAt: now},
		{ID: "tech-1003", Name: "Yusuf", IsAvailable: false, UpdatedAt: now},
	}

	for _, sample := range samples {
		tech := sample
		_, err := s.db.NewInsert().Model(&tech).Ignore().Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded technicians", zap.Int("count", len(samples)))
	}
	return nil
}

// Orders seeds one order per interesting state if they are missing.
func (s *Seeder) Orders(ctx context.Context) error {
	now := s.now()
	samples := []*entity.Order{
		sampleOrder("order-1000", "cust-1", "Apple", "iPhone 13", "Screen crack", 500, now.Add(-2*time.Hour)),
		sampleOrder("order-1001", "cust-2", "Samsung", "Galaxy S22", "Battery drains overnight", 320, now.Add(-90*time.Minute)),
		sampleOrder("order-1002", "cust-1", "Google", "Pixel 7", "Charging port loose", 180, now.Add(-time.Hour)),
	}
	assign(samples[1], "tech-1001", entity.StatusRepairing, 4, now.Add(-30*time.Minute))
	assign(samples[2], "tech-1001", entity.StatusCompleted, 7, now.Add(-10*time.Minute))

	for _, order := range samples {
		_, err := s.db.NewInsert().Model(order).Ignore().Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}

func sampleOrder(id, customer, brand, model, issue string, price float64, at time.Time) *entity.Order {
	order := entity.NewOrder(id, at)
	order.CustomerID = customer
	order.DeviceBrand = brand
	order.DeviceModel = model
	order.IssueDescription = issue
	order.EstimatedPrice = price
	order.Location = "Riyadh"
	return order
}

func assign(order *entity.Order, technicianID string, status entity.Status, revision int64, at time.Time) {
	order.TechnicianID = &technicianID
	order.Status = status
	order.Revision = revision
	order.UpdatedAt = at.UTC().Truncate(time.Microsecond)
}
