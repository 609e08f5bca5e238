package media

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/presentation/http/response"
	service "github.com/Additional-Code/repairhub/internal/service/media"
	"github.com/Additional-Code/repairhub/internal/storage"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/repairhub/transport/http/media")

// Module wires the upload endpoint and, for the local driver, static serving of
// stored files.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, store storage.Store, logger *zap.Logger) {
		Register(e, h)
		if local, ok := store.(*storage.LocalStore); ok {
			e.Static(storage.LocalPrefix, local.Root())
			logger.Info("serving local media", zap.String("prefix", storage.LocalPrefix), zap.String("root", local.Root()))
		}
	}),
)

// Handler accepts media uploads.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a media Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/media", h.upload)
}

func (h *Handler) upload(c echo.Context) error {
	b := response.New(c)

	header, err := c.FormFile("file")
	if err != nil {
		return b.WithError(errorbank.Validation("multipart field \"file\" is required", errorbank.WithCause(err))).Build()
	}
	file, err := header.Open()
	if err != nil {
		return b.WithError(errorbank.Validation("failed to open upload", errorbank.WithCause(err))).Build()
	}
	defer file.Close()

	ctx, span := httpTracer.Start(c.Request().Context(), "media.upload")
	defer span.End()

	obj, err := h.svc.Upload(ctx, file)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.Created(obj).Build()
}
