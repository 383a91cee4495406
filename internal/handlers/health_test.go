package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthCheck(t *testing.T) {
	healthy := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name         string
		checks       map[string]HealthCheckFunc
		wantStatus   int
		wantServices map[string]string
	}{
		{
			name:         "all healthy",
			checks:       map[string]HealthCheckFunc{"mongodb": healthy, "redis": healthy},
			wantStatus:   http.StatusOK,
			wantServices: map[string]string{"mongodb": "healthy", "redis": "healthy"},
		},
		{
			name:         "redis down",
			checks:       map[string]HealthCheckFunc{"mongodb": healthy, "redis": down},
			wantStatus:   http.StatusServiceUnavailable,
			wantServices: map[string]string{"mongodb": "healthy", "redis": "unhealthy"},
		},
		{
			name:         "no dependencies",
			checks:       nil,
			wantStatus:   http.StatusOK,
			wantServices: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.GET("/api/health", NewHealthHandlers(zap.NewNop(), tt.checks).HealthCheck)

			w := doRequest(router, http.MethodGet, "/api/health", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantServices, resp.Services)
		})
	}
}
