package technician

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/entity"
	repo "github.com/Additional-Code/repairhub/internal/repository/technician"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/repairhub/service/technician")

// Service manages technician profiles and availability.
type Service struct {
	repo    *repo.Repository
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := p.Config.Orders.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{repo: p.Repository, logger: logger, timeout: timeout, now: time.Now}
}

// Get returns the technician profile.
func (s *Service) Get(ctx context.Context, id string) (*entity.Technician, error) {
	ctx, span := serviceTracer.Start(ctx, "TechnicianService.Get", trace.WithAttributes(attribute.String("technician.id", id)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tech, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("technician not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Persistence("failed to load technician", errorbank.WithCause(err))
	}
	return tech, nil
}

// SetAvailability toggles whether the technician accepts new orders. The profile
// is created on first use; an empty name keeps the stored one.
func (s *Service) SetAvailability(ctx context.Context, id, name string, available bool) (*entity.Technician, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errorbank.Validation("technician id is required")
	}

	ctx, span := serviceTracer.Start(ctx, "TechnicianService.SetAvailability", trace.WithAttributes(
		attribute.String("technician.id", id),
		attribute.Bool("technician.available", available),
	))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		existing, err := s.repo.GetByID(ctx, id)
		switch {
		case err == nil:
			name = existing.Name
		case errors.Is(err, repo.ErrNotFound):
			name = id
		default:
			span.RecordError(err)
			return nil, errorbank.Persistence("failed to load technician", errorbank.WithCause(err))
		}
	}

	tech := &entity.Technician{
		ID:          id,
		Name:        name,
		IsAvailable: available,
		UpdatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Upsert(ctx, tech); err != nil {
		span.RecordError(err)
		return nil, errorbank.Persistence("failed to update availability", errorbank.WithCause(err))
	}

	s.logger.Info("technician availability changed", zap.String("id", id), zap.Bool("available", available))
	return tech, nil
}
