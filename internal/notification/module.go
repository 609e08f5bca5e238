package notification

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/messaging"
	ordersvc "github.com/Additional-Code/repairhub/internal/service/order"
)

// Module provides the dispatcher and the notifier the order service reports to.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewBrokerSender, fx.As(new(Sender))),
		NewDispatcher,
		NewNotifier,
	),
)

// NotifierParams collects dependencies for NewNotifier.
type NotifierParams struct {
	fx.In

	Config     config.Config
	Client     messaging.Client
	Dispatcher *Dispatcher
	Logger     *zap.Logger
}

// NewNotifier relays through the message bus when it is enabled and dispatches
// in-process otherwise.
func NewNotifier(p NotifierParams) ordersvc.Notifier {
	if p.Config.Messaging.Enabled && p.Config.Messaging.Driver != "noop" {
		p.Logger.Info("order notifications relayed via message bus", zap.String("topic", p.Client.Topic()))
		return NewRelay(p.Client, p.Logger)
	}
	return p.Dispatcher
}
