// Package stream pushes live order snapshots and user notifications over WebSockets.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/dto"
	"github.com/Additional-Code/repairhub/internal/presentation/http/response"
	"github.com/Additional-Code/repairhub/internal/projection"
	"github.com/Additional-Code/repairhub/internal/realtime"
	service "github.com/Additional-Code/repairhub/internal/service/order"
	ordertransport "github.com/Additional-Code/repairhub/internal/transport/http/order"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Envelope types.
const (
	TypeOrderSnapshot = "order.snapshot"
	TypeOrderCreated  = "order.created"
	TypeNotification  = "notification"
)

// Envelope frames every message sent to a client.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Module wires the stream endpoints.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Handler upgrades requests and relays subscriptions to the socket.
type Handler struct {
	orders   *service.Service
	broker   realtime.Broker
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a stream Handler.
func NewHandler(orders *service.Service, broker realtime.Broker, logger *zap.Logger) *Handler {
	return &Handler{
		orders: orders,
		broker: broker,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/orders/pending/stream", h.pendingOrders)
	e.GET("/orders/:id/stream", h.order)
	e.GET("/users/:id/notifications/stream", h.notifications)
}

func (h *Handler) order(c echo.Context) error {
	viewer, err := ordertransport.ViewerFromQuery(c)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub, err := h.orders.Subscribe(ctx, c.Param("id"))
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	defer sub.Unsubscribe()

	return h.serve(ctx, c, cancel, orderFeed(ctx, sub, TypeOrderSnapshot, viewer))
}

func (h *Handler) pendingOrders(c echo.Context) error {
	viewer, err := ordertransport.ViewerFromQuery(c)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub, err := h.orders.SubscribeToNewPending(ctx)
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	defer sub.Unsubscribe()

	return h.serve(ctx, c, cancel, orderFeed(ctx, sub, TypeOrderCreated, viewer))
}

func (h *Handler) notifications(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sub, err := h.broker.Subscribe(ctx, realtime.UserTopic(c.Param("id")))
	if err != nil {
		return response.New(c).WithError(err).Build()
	}
	defer sub.Unsubscribe()

	feed := make(chan Envelope)
	go func() {
		defer close(feed)
		for msg := range sub.Messages() {
			select {
			case feed <- Envelope{Type: TypeNotification, Payload: msg.Payload, Timestamp: time.Now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return h.serve(ctx, c, cancel, feed)
}

func orderFeed(ctx context.Context, sub *service.OrderSubscription, kind string, viewer projection.Viewer) <-chan Envelope {
	feed := make(chan Envelope)
	go func() {
		defer close(feed)
		for order := range sub.Updates() {
			payload, err := json.Marshal(dto.NewOrderResponse(order, viewer))
			if err != nil {
				continue
			}
			select {
			case feed <- Envelope{Type: kind, Payload: payload, Timestamp: time.Now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed
}

// serve owns the connection until the client leaves or the feed ends. It blocks
// so the request context stays alive for the subscription.
func (h *Handler) serve(ctx context.Context, c echo.Context, cancel context.CancelFunc, feed <-chan Envelope) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("path", c.Path()), zap.Error(err))
		return nil
	}
	defer conn.Close()

	go h.readPump(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-feed:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteJSON(env); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// readPump discards client frames; it exists to process pongs and notice closes.
func (h *Handler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}
