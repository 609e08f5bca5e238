package technician

import "go.uber.org/fx"

// Module provides the technician repository to Fx.
var Module = fx.Provide(NewRepository)
