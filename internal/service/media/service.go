package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/storage"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/repairhub/service/media")

// Module provides the media service to Fx.
var Module = fx.Provide(NewService)

// Service accepts photos customers attach to new orders.
type Service struct {
	store    storage.Store
	maxBytes int64
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  storage.Store
	Config config.Config
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBytes := p.Config.Storage.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	timeout := p.Config.Orders.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		store:    p.Store,
		maxBytes: maxBytes,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Upload sniffs the content, accepts images only, and stores them under a
// date-partitioned key.
func (s *Service) Upload(ctx context.Context, body io.Reader) (storage.Object, error) {
	ctx, span := serviceTracer.Start(ctx, "MediaService.Upload")
	defer span.End()

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return storage.Object{}, errorbank.Validation("failed to read upload", errorbank.WithCause(err))
	}
	if len(data) == 0 {
		return storage.Object{}, errorbank.Validation("upload is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return storage.Object{}, errorbank.Validation("upload is too large", errorbank.WithDetail("max_bytes", s.maxBytes))
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	if !strings.HasPrefix(contentType, "image/") {
		return storage.Object{}, errorbank.Validation("only images can be attached", errorbank.WithDetail("content_type", contentType))
	}

	key := "orders/" + s.now().UTC().Format("2006/01/02") + "/" + s.newID() + mtype.Extension()
	span.SetAttributes(attribute.String("media.key", key), attribute.String("media.content_type", contentType))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	obj, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		span.RecordError(err)
		return storage.Object{}, errorbank.Persistence("failed to store upload", errorbank.WithCause(err))
	}

	s.logger.Info("media stored", zap.String("key", obj.Key), zap.Int64("size", obj.Size))
	return obj, nil
}
