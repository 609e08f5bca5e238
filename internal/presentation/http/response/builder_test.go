package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func render(t *testing.T, build func(c echo.Context) error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	require.NoError(t, build(c))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestBuildCreated(t *testing.T) {
	rec, env := render(t, func(c echo.Context) error {
		return New(c).Created(map[string]string{"id": "o1"}).WithMeta("", "ignored").Build()
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":"o1"}`, string(env.Data))
	assert.Equal(t, map[string]any{"request_id": "req-1"}, env.Meta)
}

func TestBuildAppError(t *testing.T) {
	rec, env := render(t, func(c echo.Context) error {
		err := errorbank.Validation("invalid order", errorbank.WithDetail("fields", map[string]string{"device_brand": "required"}))
		return New(c).WithError(err).Build()
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation", env.Error.Kind)
	assert.Equal(t, "invalid order", env.Error.Message)
	assert.Equal(t, map[string]any{"device_brand": "required"}, env.Error.Details["fields"])
	assert.Equal(t, "req-1", env.Meta["request_id"])
}

func TestBuildErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   int
	}{
		{"conflict", errorbank.ConcurrentModification("order already taken"), 0, http.StatusConflict},
		{"plain error", errors.New("boom"), 0, http.StatusInternalServerError},
		{"explicit status wins", errorbank.NotFound("order not found"), http.StatusGone, http.StatusGone},
		{"success status ignored", errorbank.NotFound("order not found"), http.StatusOK, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := render(t, func(c echo.Context) error {
				return New(c).WithStatus(tt.status).WithError(tt.err).Build()
			})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
