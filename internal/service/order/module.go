package order

import "go.uber.org/fx"

// Module provides the order lifecycle service. Cache, broker and notifier are
// optional and resolved from whatever the surrounding app supplies.
var Module = fx.Provide(NewService)
