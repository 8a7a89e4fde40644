package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/pribylovaa/go-food-delivery/pkg/log"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestServer_Readiness(t *testing.T) {
	p := New(log.Discard(), "prod", "127.0.0.1:0", "127.0.0.1:0")
	h := p.Handler()

	require.Equal(t, http.StatusOK, get(t, h, "/livez").Code)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthz").Code)

	p.SetReady(true)
	require.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	resp, err := p.hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	p.SetReady(false)
	require.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthz").Code)
}

func TestServer_Metrics(t *testing.T) {
	p := New(log.Discard(), "local", "127.0.0.1:0", "")

	rr := get(t, p.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "go_goroutines")
}
