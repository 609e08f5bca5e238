package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database/databasetest"
	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/lifecycle"
	"github.com/Additional-Code/repairhub/internal/realtime"
	repo "github.com/Additional-Code/repairhub/internal/repository/order"
	techrepo "github.com/Additional-Code/repairhub/internal/repository/technician"
	service "github.com/Additional-Code/repairhub/internal/service/order"
)

type fixture struct {
	svc    *service.Service
	broker *realtime.MemoryBroker
	url    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conns := databasetest.New(t)
	technicians := techrepo.NewRepository(conns)
	require.NoError(t, technicians.Upsert(context.Background(), &entity.Technician{ID: "t1", Name: "T", IsAvailable: true, UpdatedAt: time.Now().UTC()}))

	broker := realtime.NewMemoryBroker(8)
	svc := service.NewService(service.Params{
		Repository:  repo.NewRepository(conns),
		Technicians: technicians,
		Broker:      broker,
		Config:      config.Config{Orders: config.Orders{RequestTimeout: 5 * time.Second, Location: time.UTC}},
		Logger:      zap.NewNop(),
	})

	e := echo.New()
	Register(e, NewHandler(svc, broker, zap.NewNop()))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &fixture{svc: svc, broker: broker, url: "ws" + strings.TrimPrefix(srv.URL, "http")}
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func createOrder(t *testing.T, svc *service.Service, customer string) *entity.Order {
	t.Helper()
	price := 250.0
	order, err := svc.Create(context.Background(), service.CreateInput{
		CustomerID:       customer,
		DeviceBrand:      "Samsung",
		DeviceModel:      "S22",
		IssueDescription: "Battery drains",
		EstimatedPrice:   &price,
		Location:         "Jeddah",
	})
	require.NoError(t, err)
	return order
}

func TestOrderStream(t *testing.T) {
	f := newFixture(t)
	order := createOrder(t, f.svc, "c1")

	conn := dial(t, f.url+"/orders/"+order.ID+"/stream?viewer_id=c1&viewer_role=customer")

	env := read(t, conn)
	assert.Equal(t, TypeOrderSnapshot, env.Type)
	assert.Contains(t, string(env.Payload), `"status":"pending"`)

	_, err := f.svc.UpdateStatus(context.Background(), service.TransitionRequest{
		OrderID: order.ID,
		To:      entity.StatusAccepted,
		Actor:   lifecycle.Actor{ID: "t1", Role: lifecycle.RoleTechnician},
	})
	require.NoError(t, err)

	env = read(t, conn)
	var snapshot struct {
		Status       string `json:"status"`
		TechnicianID string `json:"technician_id"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &snapshot))
	assert.Equal(t, "accepted", snapshot.Status)
	assert.Equal(t, "t1", snapshot.TechnicianID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return f.broker.Subscribers(realtime.OrderTopic(order.ID)) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPendingStream(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"/orders/pending/stream")

	require.Eventually(t, func() bool {
		return f.broker.Subscribers(realtime.PendingTopic) == 1
	}, 2*time.Second, 20*time.Millisecond)

	order := createOrder(t, f.svc, "c1")
	env := read(t, conn)
	assert.Equal(t, TypeOrderCreated, env.Type)
	assert.Contains(t, string(env.Payload), order.ID)
}

func TestNotificationStream(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.url+"/users/c1/notifications/stream")

	require.Eventually(t, func() bool {
		return f.broker.Subscribers(realtime.UserTopic("c1")) == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, f.broker.Publish(context.Background(), realtime.UserTopic("c1"), []byte(`{"title":"Order update"}`)))
	env := read(t, conn)
	assert.Equal(t, TypeNotification, env.Type)
	assert.JSONEq(t, `{"title":"Order update"}`, string(env.Payload))
}

func TestOrderStreamUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, resp, err := websocket.DefaultDialer.Dial(f.url+"/orders/missing/stream", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
