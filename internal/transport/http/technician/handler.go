package technician

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Additional-Code/repairhub/internal/dto"
	"github.com/Additional-Code/repairhub/internal/presentation/http/response"
	service "github.com/Additional-Code/repairhub/internal/service/technician"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/repairhub/transport/http/technician")

// Module wires HTTP technician handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Handler exposes technician profile endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a technician Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/technicians/:id", h.get)
	e.PUT("/technicians/:id/availability", h.setAvailability)
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "technicians.get", trace.WithAttributes(attribute.String("technician.id", id)))
	defer span.End()

	tech, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewTechnicianResponse(*tech)).Build()
}

func (h *Handler) setAvailability(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name        string `json:"name"`
		IsAvailable *bool  `json:"is_available"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.Validation("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.IsAvailable == nil {
		return b.WithError(errorbank.Validation("is_available is required")).Build()
	}

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "technicians.setAvailability", trace.WithAttributes(attribute.String("technician.id", id)))
	defer span.End()

	tech, err := h.svc.SetAvailability(ctx, id, payload.Name, *payload.IsAvailable)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewTechnicianResponse(*tech)).Build()
}
