package order

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/repairhub/internal/dto"
	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/presentation/http/response"
	"github.com/Additional-Code/repairhub/internal/projection"
	service "github.com/Additional-Code/repairhub/internal/service/order"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/repairhub/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("/pending", h.listPending)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id/status", h.updateStatus)

	e.GET("/customers/:id/orders", h.listForCustomer)
	e.GET("/technicians/:id/orders", h.listForTechnician)
	e.GET("/technicians/:id/earnings", h.earnings)
}

type statusPayload struct {
	Status         entity.Status  `json:"status"`
	ActorID        string         `json:"actor_id"`
	ActorRole      lifecycle.Role `json:"actor_role"`
	ExpectedStatus *entity.Status `json:"expected_status"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload service.CreateInput
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.Validation("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(attribute.String("order.customer_id", payload.CustomerID))
	defer span.End()

	order, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	viewer := projection.Viewer{ID: order.CustomerID, Role: lifecycle.RoleCustomer}
	return b.Created(dto.NewOrderResponse(*order, viewer)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	viewer, err := ViewerFromQuery(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(*order, viewer)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.Validation("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Status == "" || payload.ActorID == "" || payload.ActorRole == "" {
		return b.WithError(errorbank.Validation("status, actor_id and actor_role are required")).Build()
	}

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.to", string(payload.Status)),
	))
	defer span.End()

	actor := lifecycle.Actor{ID: payload.ActorID, Role: payload.ActorRole}
	order, err := h.svc.UpdateStatus(ctx, service.TransitionRequest{
		OrderID:        id,
		To:             payload.Status,
		Actor:          actor,
		ExpectedStatus: payload.ExpectedStatus,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	viewer := projection.Viewer{ID: actor.ID, Role: actor.Role}
	return b.WithData(dto.NewOrderResponse(*order, viewer)).Build()
}

func (h *Handler) listPending(c echo.Context) error {
	b := response.New(c)

	viewer, err := ViewerFromQuery(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listPending")
	defer span.End()

	orders, err := h.svc.ListPending(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderListResponse(orders, viewer)).WithMeta("count", len(orders)).Build()
}

func (h *Handler) listForCustomer(c echo.Context) error {
	viewer := projection.Viewer{ID: c.Param("id"), Role: lifecycle.RoleCustomer}
	return h.listFor(c, viewer, "orders.listForCustomer", h.svc.ListForCustomer)
}

func (h *Handler) listForTechnician(c echo.Context) error {
	viewer := projection.Viewer{ID: c.Param("id"), Role: lifecycle.RoleTechnician}
	return h.listFor(c, viewer, "orders.listForTechnician", h.svc.ListForTechnician)
}

func (h *Handler) listFor(c echo.Context, viewer projection.Viewer, spanName string, load func(ctx context.Context, id string) ([]entity.Order, error)) error {
	b := response.New(c)

	filter, err := projection.ParseFilter(c.QueryParam("filter"))
	if err != nil {
		return b.WithError(errorbank.Validation(err.Error())).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), spanName, trace.WithAttributes(
		attribute.String("viewer.id", viewer.ID),
		attribute.String("filter", string(filter)),
	))
	defer span.End()

	orders, err := load(ctx, viewer.ID)
	if err != nil {
		return b.WithError(err).Build()
	}
	orders = projection.FilterByRole(orders, viewer, filter)
	return b.WithData(dto.NewOrderListResponse(orders, viewer)).WithMeta("count", len(orders)).WithMeta("filter", filter).Build()
}

func (h *Handler) earnings(c echo.Context) error {
	b := response.New(c)

	period, err := projection.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return b.WithError(errorbank.Validation(err.Error())).Build()
	}

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.earnings", trace.WithAttributes(attribute.String("technician.id", id)))
	defer span.End()

	summary, err := h.svc.Earnings(ctx, id, period)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(summary).Build()
}

// ViewerFromQuery reads the optional viewer_id and viewer_role query parameters.
func ViewerFromQuery(c echo.Context) (projection.Viewer, error) {
	viewer := projection.Viewer{ID: c.QueryParam("viewer_id"), Role: lifecycle.Role(c.QueryParam("viewer_role"))}
	if viewer.ID == "" && viewer.Role == "" {
		return projection.Viewer{}, nil
	}
	if viewer.ID == "" || !viewer.Role.Valid() {
		return projection.Viewer{}, errorbank.Validation("viewer_id and a valid viewer_role must be given together")
	}
	return viewer, nil
}
