package http_ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router(checks map[string]Check) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(checks).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	cases := []struct {
		name   string
		checks map[string]Check
		status int
		want   HealthResponseDTO
	}{
		{
			name:   "all up",
			checks: map[string]Check{"redis": ok, "postgres": ok},
			status: http.StatusOK,
			want:   HealthResponseDTO{Status: "ok", Checks: map[string]string{"redis": "ok", "postgres": "ok"}},
		},
		{
			name:   "postgres down",
			checks: map[string]Check{"redis": ok, "postgres": down},
			status: http.StatusServiceUnavailable,
			want:   HealthResponseDTO{Status: "degraded", Checks: map[string]string{"redis": "ok", "postgres": "connection refused"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(router(tc.checks), "/api/v1/health")
			require.Equal(t, tc.status, w.Code)

			var got HealthResponseDTO
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMetricsExposed(t *testing.T) {
	w := get(router(nil), "/api/v1/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "matchroom_rooms_live")
}
