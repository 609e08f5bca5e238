package technician

import "go.uber.org/fx"

// Module provides the technician service to Fx.
var Module = fx.Provide(NewService)
