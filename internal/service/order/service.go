package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/cache"
	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/projection"
	"github.com/Additional-Code/repairhub/internal/realtime"
	repo "github.com/Additional-Code/repairhub/internal/repository/order"
	techrepo "github.com/Additional-Code/repairhub/internal/repository/technician"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/Additional-Code/repairhub/service/order")
	serviceMeter  = otel.Meter("github.com/Additional-Code/repairhub/service/order")
)

// Notifier receives committed order changes. Implementations must not fail the
// caller; delivery problems are theirs to log.
type Notifier interface {
	OrderCreated(ctx context.Context, order entity.Order)
	StatusChanged(ctx context.Context, order entity.Order, previous entity.Status, actor lifecycle.Actor)
}

// TransitionRequest asks for a single status change on an order.
type TransitionRequest struct {
	OrderID        string
	To             entity.Status
	Actor          lifecycle.Actor
	ExpectedStatus *entity.Status
}

// Service encapsulates business logic around orders.
type Service struct {
	repo        *repo.Repository
	technicians *techrepo.Repository
	cache       cache.Store
	cacheTTL    time.Duration
	broker      realtime.Broker
	notifier    Notifier
	logger      *zap.Logger
	timeout     time.Duration
	location    *time.Location
	validate    *validator.Validate
	transitions metric.Int64Counter

	now   func() time.Time
	newID func() string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository  *repo.Repository
	Technicians *techrepo.Repository
	Cache       cache.Store     `optional:"true"`
	Broker      realtime.Broker `optional:"true"`
	Notifier    Notifier        `optional:"true"`
	Config      config.Config
	Logger      *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	location := p.Config.Orders.Location
	if location == nil {
		location = time.Local
	}
	timeout := p.Config.Orders.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transitions, err := serviceMeter.Int64Counter(
		"repairhub.order.transitions",
		metric.WithDescription("Order status transitions by outcome"),
	)
	if err != nil {
		logger.Warn("order transition counter unavailable", zap.Error(err))
	}

	return &Service{
		repo:        p.Repository,
		technicians: p.Technicians,
		cache:       p.Cache,
		cacheTTL:    p.Config.Cache.DefaultTTL,
		broker:      p.Broker,
		notifier:    p.Notifier,
		logger:      logger,
		timeout:     timeout,
		location:    location,
		validate:    newValidator(),
		transitions: transitions,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Create validates input and persists a new pending order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	order := entity.NewOrder(s.newID(), s.now())
	order.CustomerID = strings.TrimSpace(in.CustomerID)
	order.DeviceBrand = strings.TrimSpace(in.DeviceBrand)
	order.DeviceModel = strings.TrimSpace(in.DeviceModel)
	order.IssueDescription = strings.TrimSpace(in.IssueDescription)
	order.EstimatedPrice = *in.EstimatedPrice
	order.Location = strings.TrimSpace(in.Location)
	if in.ServiceType != "" {
		order.ServiceType = in.ServiceType
	}
	order.SetCoordinates(in.Coordinates)
	if len(in.MediaURLs) > 0 {
		order.MediaURLs = append([]string(nil), in.MediaURLs...)
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.id", order.ID)))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, persistenceError("failed to create order", err)
	}

	s.remember(ctx, order)
	s.publish(ctx, realtime.OrderTopic(order.ID), order)
	s.publish(ctx, realtime.PendingTopic, order)
	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, *order)
	}
	return order, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("id", id), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, lookupError(err)
	}

	s.remember(ctx, order)
	return order, nil
}

// ListForCustomer returns every order the customer placed, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	return s.list(ctx, "OrderService.ListForCustomer", func(ctx context.Context) ([]entity.Order, error) {
		return s.repo.ListByCustomer(ctx, customerID)
	})
}

// ListForTechnician returns every order assigned to the technician, newest first.
func (s *Service) ListForTechnician(ctx context.Context, technicianID string) ([]entity.Order, error) {
	return s.list(ctx, "OrderService.ListForTechnician", func(ctx context.Context) ([]entity.Order, error) {
		return s.repo.ListByTechnician(ctx, technicianID)
	})
}

// ListPending returns the orders still waiting for a technician, newest first.
func (s *Service) ListPending(ctx context.Context) ([]entity.Order, error) {
	return s.list(ctx, "OrderService.ListPending", func(ctx context.Context) ([]entity.Order, error) {
		return s.repo.ListByStatus(ctx, entity.StatusPending)
	})
}

func (s *Service) list(ctx context.Context, spanName string, load func(context.Context) ([]entity.Order, error)) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, spanName)
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orders, err := load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, persistenceError("failed to list orders", err)
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

// UpdateStatus applies one transition and commits it only if the order has not
// changed since it was read. Exactly one of several racing callers wins.
func (s *Service) UpdateStatus(ctx context.Context, req TransitionRequest) (*entity.Order, error) {
	if !req.To.Valid() {
		return nil, errorbank.Validation("unknown target status", errorbank.WithDetail("status", string(req.To)))
	}
	if !req.Actor.Role.Valid() {
		return nil, errorbank.Validation("unknown actor role", errorbank.WithDetail("role", string(req.Actor.Role)))
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.to", string(req.To)),
		attribute.String("actor.role", string(req.Actor.Role)),
	))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.repo.GetLatest(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, lookupError(err)
	}

	actor := req.Actor
	if req.To == entity.StatusAccepted && actor.Role == lifecycle.RoleTechnician && current.Status == entity.StatusPending {
		available, err := s.technicianAvailable(ctx, actor.ID)
		if err != nil {
			span.RecordError(err)
			return nil, persistenceError("failed to load technician", err)
		}
		actor.Available = available
	}

	next, err := lifecycle.Apply(*current, lifecycle.Request{To: req.To, Actor: actor, ExpectedStatus: req.ExpectedStatus}, s.now())
	if err != nil {
		s.countTransition(ctx, current.Status, req.To, errorbank.From(err).Kind())
		return nil, err
	}

	if err := s.repo.CompareAndSwapStatus(ctx, &next, current.Status, current.Revision); err != nil {
		if errors.Is(err, repo.ErrStaleWrite) {
			s.countTransition(ctx, current.Status, req.To, errorbank.KindConcurrentModification)
			return nil, staleError(*current, req.To)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, persistenceError("failed to update order status", err)
	}
	s.countTransition(ctx, current.Status, req.To, "")

	s.logger.Info("order status changed",
		zap.String("id", next.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)

	s.remember(ctx, &next)
	s.publish(ctx, realtime.OrderTopic(next.ID), &next)
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, next, current.Status, actor)
	}
	return &next, nil
}

// Earnings summarises the technician's completed orders for the period.
func (s *Service) Earnings(ctx context.Context, technicianID string, period projection.Period) (projection.EarningsSummary, error) {
	orders, err := s.ListForTechnician(ctx, technicianID)
	if err != nil {
		return projection.EarningsSummary{}, err
	}
	return projection.Earnings(orders, period, s.now().In(s.location)), nil
}

func (s *Service) technicianAvailable(ctx context.Context, id string) (bool, error) {
	if s.technicians == nil || id == "" {
		return false, nil
	}
	tech, err := s.technicians.GetByID(ctx, id)
	if errors.Is(err, techrepo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tech.IsAvailable, nil
}

func (s *Service) countTransition(ctx context.Context, from, to entity.Status, kind errorbank.Kind) {
	if s.transitions == nil {
		return
	}
	outcome := "committed"
	if kind != "" {
		outcome = string(kind)
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
		attribute.String("outcome", outcome),
	))
}

func (s *Service) publish(ctx context.Context, topic string, order *entity.Order) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(order)
	if err != nil {
		s.logger.Error("marshal order snapshot", zap.String("id", order.ID), zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("publish order snapshot", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *Service) cacheKey(id string) string {
	return cache.Key("orders", id)
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Order, error) {
	order, err := cache.GetJSON[entity.Order](ctx, s.cache, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) remember(ctx context.Context, order *entity.Order) {
	if order == nil {
		return
	}
	// Guarded by revision: a read that loaded an older snapshot must not replace
	// the one a concurrent transition just wrote.
	if _, err := cache.SetJSONIfNewer(ctx, s.cache, s.cacheKey(order.ID), order.Revision, order, s.cacheTTL); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", order.ID), zap.Error(err))
	}
}

func lookupError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("order not found")
	}
	return persistenceError("failed to load order", err)
}

func persistenceError(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		message += ": request timed out"
	}
	return errorbank.Persistence(message, errorbank.WithCause(err))
}

func staleError(current entity.Order, to entity.Status) error {
	message := "order was modified concurrently"
	if to == entity.StatusAccepted && current.Status == entity.StatusPending {
		message = "order already taken by another technician"
	}
	return errorbank.ConcurrentModification(message,
		errorbank.WithDetail("order_id", current.ID),
		errorbank.WithDetail("from", string(current.Status)),
		errorbank.WithDetail("to", string(to)),
	)
}
