package order

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

var repoTracer = otel.Tracer("github.com/Additional-Code/repairhub/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrStaleWrite is returned when a conditional update matched no row because the
// stored status or revision moved on.
var ErrStaleWrite = errors.New("order changed concurrently")

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.id", order.ID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, r.reader, id)
}

// GetLatest fetches an order from the primary, bypassing replica lag. Used right
// before a conditional update.
func (r *Repository) GetLatest(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, r.writer, id)
}

func (r *Repository) get(ctx context.Context, db *bun.DB, id string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := db.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// ListByCustomer returns a customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	return r.list(ctx, "OrderRepository.ListByCustomer", "customer_id = ?", customerID)
}

// ListByTechnician returns orders assigned to a technician, newest first.
func (r *Repository) ListByTechnician(ctx context.Context, technicianID string) ([]entity.Order, error) {
	return r.list(ctx, "OrderRepository.ListByTechnician", "technician_id = ?", technicianID)
}

// ListByStatus returns orders currently in status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status entity.Status) ([]entity.Order, error) {
	return r.list(ctx, "OrderRepository.ListByStatus", "status = ?", status)
}

func (r *Repository) list(ctx context.Context, spanName, where string, arg any) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, spanName)
	defer span.End()

	var orders []entity.Order
	err := r.reader.NewSelect().
		Model(&orders).
		Where(where, arg).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// CompareAndSwapStatus writes the transition carried by next only if the stored row
// still has expectedStatus and expectedRevision. ErrStaleWrite means another writer
// got there first.
func (r *Repository) CompareAndSwapStatus(ctx context.Context, next *entity.Order, expectedStatus entity.Status, expectedRevision int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CompareAndSwapStatus", trace.WithAttributes(
		attribute.String("order.id", next.ID),
		attribute.String("order.status.from", string(expectedStatus)),
		attribute.String("order.status.to", string(next.Status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(next).
		Column("status", "technician_id", "revision", "updated_at").
		Where("id = ?", next.ID).
		Where("status = ?", expectedStatus).
		Where("revision = ?", expectedRevision).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return err
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "stale write")
		return ErrStaleWrite
	}
	return nil
}
