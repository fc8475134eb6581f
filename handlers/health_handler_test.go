package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	cases := map[string]struct {
		ping       error
		wantStatus int
		wantDB     string
	}{
		"database up":   {nil, http.StatusOK, "up"},
		"database down": {errors.New("connection refused"), http.StatusServiceUnavailable, "down"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewHealthHandler(pingerFunc(func(context.Context) error { return tc.ping }), nil)

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			body := decode[map[string]string](t, rec)
			assert.Equal(t, tc.wantDB, body["database"])
		})
	}
}
