package technician

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/repairhub/internal/database"
	"github.com/Additional-Code/repairhub/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/repairhub/repository/technician")

// ErrNotFound is returned when a technician has no profile row yet.
var ErrNotFound = errors.New("technician not found")

// Repository persists technician availability.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Upsert inserts the technician or overwrites name and availability.
func (r *Repository) Upsert(ctx context.Context, tech *entity.Technician) error {
	ctx, span := repoTracer.Start(ctx, "TechnicianRepository.Upsert", trace.WithAttributes(
		attribute.String("technician.id", tech.ID),
		attribute.Bool("technician.available", tech.IsAvailable),
	))
	defer span.End()

	_, err := database.UpsertColumns(r.writer.NewInsert().Model(tech), "name", "is_available", "updated_at").
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return err
}

// GetByID loads a technician profile.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Technician, error) {
	ctx, span := repoTracer.Start(ctx, "TechnicianRepository.GetByID", trace.WithAttributes(attribute.String("technician.id", id)))
	defer span.End()

	tech := new(entity.Technician)
	err := r.reader.NewSelect().Model(tech).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return tech, nil
}

// ListAvailable returns every technician currently accepting new work.
func (r *Repository) ListAvailable(ctx context.Context) ([]entity.Technician, error) {
	ctx, span := repoTracer.Start(ctx, "TechnicianRepository.ListAvailable")
	defer span.End()

	var techs []entity.Technician
	err := r.reader.NewSelect().
		Model(&techs).
		Where("is_available = ?", true).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return techs, nil
}
