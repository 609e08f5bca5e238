package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/cache"
	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database"
	"github.com/Additional-Code/repairhub/internal/logger"
	"github.com/Additional-Code/repairhub/internal/messaging"
	"github.com/Additional-Code/repairhub/internal/notification"
	"github.com/Additional-Code/repairhub/internal/observability"
	"github.com/Additional-Code/repairhub/internal/realtime"
	repositoryorder "github.com/Additional-Code/repairhub/internal/repository/order"
	repositorytechnician "github.com/Additional-Code/repairhub/internal/repository/technician"
	grpcserver "github.com/Additional-Code/repairhub/internal/server/grpc"
	httpserver "github.com/Additional-Code/repairhub/internal/server/http"
	servicemedia "github.com/Additional-Code/repairhub/internal/service/media"
	serviceorder "github.com/Additional-Code/repairhub/internal/service/order"
	servicetechnician "github.com/Additional-Code/repairhub/internal/service/technician"
	"github.com/Additional-Code/repairhub/internal/storage"
	transporthttp "github.com/Additional-Code/repairhub/internal/transport/http"
	"github.com/Additional-Code/repairhub/internal/worker"
	workerorder "github.com/Additional-Code/repairhub/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	realtime.Module,
	repositoryorder.Module,
	repositorytechnician.Module,
	notification.Module,
	serviceorder.Module,
	servicetechnician.Module,
)

// Logging routes Fx's own lifecycle events through the application logger.
var Logging = fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger.Named("fx")}
})

// HTTP wires the HTTP, WebSocket and gRPC health transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	Logging,
	storage.Module,
	servicemedia.Module,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	Logging,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
