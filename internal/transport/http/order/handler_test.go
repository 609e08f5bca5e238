package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
	"github.com/Additional-Code/repairhub/internal/database/databasetest"
	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/internal/realtime"
	repo "github.com/Additional-Code/repairhub/internal/repository/order"
	techrepo "github.com/Additional-Code/repairhub/internal/repository/technician"
	service "github.com/Additional-Code/repairhub/internal/service/order"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

type testOrder struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	TechnicianID    *string `json:"technician_id"`
	ProgressPercent int     `json:"progress_percent"`
	NextAction      string  `json:"next_action"`
}

type server struct {
	e           *echo.Echo
	technicians *techrepo.Repository
}

func newServer(t *testing.T) *server {
	t.Helper()
	conns := databasetest.New(t)
	technicians := techrepo.NewRepository(conns)
	svc := service.NewService(service.Params{
		Repository:  repo.NewRepository(conns),
		Technicians: technicians,
		Broker:      realtime.NewMemoryBroker(4),
		Config:      config.Config{Orders: config.Orders{RequestTimeout: 5 * time.Second, Location: time.UTC}},
		Logger:      zap.NewNop(),
	})
	e := echo.New()
	Register(e, NewHandler(svc))
	return &server{e: e, technicians: technicians}
}

func (s *server) do(t *testing.T, method, target string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func createBody(customer string) map[string]any {
	return map[string]any{
		"customer_id":       customer,
		"device_brand":      "Apple",
		"device_model":      "iPhone 13",
		"issue_description": "Screen crack",
		"estimated_price":   500,
		"location":          "Riyadh",
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.technicians.Upsert(context.Background(), &entity.Technician{ID: "t1", Name: "T", IsAvailable: true, UpdatedAt: time.Now().UTC()}))

	code, env := s.do(t, http.MethodPost, "/orders", createBody("c1"))
	require.Equal(t, http.StatusCreated, code)
	created := decode[testOrder](t, env.Data)
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.TechnicianID)

	code, env = s.do(t, http.MethodGet, "/orders/pending?viewer_id=t1&viewer_role=technician", nil)
	require.Equal(t, http.StatusOK, code)
	pending := decode[[]testOrder](t, env.Data)
	require.Len(t, pending, 1)
	assert.Equal(t, "accept", pending[0].NextAction)

	code, env = s.do(t, http.MethodPatch, "/orders/"+created.ID+"/status", map[string]any{
		"status": "accepted", "actor_id": "t1", "actor_role": "technician",
	})
	require.Equal(t, http.StatusOK, code)
	accepted := decode[testOrder](t, env.Data)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, 20, accepted.ProgressPercent)
	assert.Equal(t, "picking_up", accepted.NextAction)

	code, env = s.do(t, http.MethodPatch, "/orders/"+created.ID+"/status", map[string]any{
		"status": "accepted", "actor_id": "t2", "actor_role": "technician",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "concurrent_modification", env.Error.Kind)

	code, env = s.do(t, http.MethodGet, "/technicians/t1/orders?filter=active", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]testOrder](t, env.Data), 1)

	code, env = s.do(t, http.MethodGet, "/customers/c1/orders?filter=completed", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]testOrder](t, env.Data))

	code, env = s.do(t, http.MethodGet, "/technicians/t1/earnings?period=today", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"count":0`)
}

func TestOrderErrorsOverHTTP(t *testing.T) {
	s := newServer(t)

	body := createBody("c1")
	delete(body, "device_model")
	code, env := s.do(t, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Error.Kind)
	assert.Contains(t, env.Error.Details["fields"], "device_model")

	code, env = s.do(t, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Kind)

	_, env = s.do(t, http.MethodPost, "/orders", createBody("c1"))
	id := decode[testOrder](t, env.Data).ID

	code, env = s.do(t, http.MethodPatch, "/orders/"+id+"/status", map[string]any{
		"status": "repairing", "actor_id": "t1", "actor_role": "technician",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "illegal_transition", env.Error.Kind)

	code, env = s.do(t, http.MethodPatch, "/orders/"+id+"/status", map[string]any{
		"status": "cancelled", "actor_id": "c2", "actor_role": "customer",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "unauthorized_transition", env.Error.Kind)

	code, _ = s.do(t, http.MethodPatch, "/orders/"+id+"/status", map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/orders/"+id+"?viewer_role=admin&viewer_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/customers/c1/orders?filter=archived", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodGet, "/technicians/t1/earnings?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
