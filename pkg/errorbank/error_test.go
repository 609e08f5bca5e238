package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		code   codes.Code
	}{
		{KindValidation, http.StatusBadRequest, codes.InvalidArgument},
		{KindNotFound, http.StatusNotFound, codes.NotFound},
		{KindIllegalTransition, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{KindUnauthorizedTransition, http.StatusForbidden, codes.PermissionDenied},
		{KindConcurrentModification, http.StatusConflict, codes.Aborted},
		{KindPersistence, http.StatusServiceUnavailable, codes.Unavailable},
		{KindInternal, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := New(tt.kind, "")
			assert.Equal(t, tt.status, err.StatusCode())
			assert.Equal(t, tt.code, err.GRPCCode())
			assert.Equal(t, string(tt.kind), err.Message())
		})
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)

	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("update: %w", ConcurrentModification("taken", WithDetail("order_id", "o1")))

	assert.True(t, IsKind(err, KindConcurrentModification))
	assert.False(t, IsKind(err, KindIllegalTransition))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
	assert.Equal(t, "o1", From(err).Details()["order_id"])
}
