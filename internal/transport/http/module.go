package http

import (
	"go.uber.org/fx"

	mediatransport "github.com/Additional-Code/repairhub/internal/transport/http/media"
	ordertransport "github.com/Additional-Code/repairhub/internal/transport/http/order"
	streamtransport "github.com/Additional-Code/repairhub/internal/transport/http/stream"
	techniciantransport "github.com/Additional-Code/repairhub/internal/transport/http/technician"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	techniciantransport.Module,
	mediatransport.Module,
	streamtransport.Module,
)
