package order

import "go.uber.org/fx"

// Module provides the bun-backed order store with its revision-guarded writes.
var Module = fx.Provide(NewRepository)
