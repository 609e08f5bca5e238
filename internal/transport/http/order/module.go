package order

import "go.uber.org/fx"

// Module wires the order REST endpoints onto the shared router.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
