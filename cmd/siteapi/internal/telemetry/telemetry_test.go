package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.ObservabilityConfig{ServiceName: "siteapi"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_RejectsGRPC(t *testing.T) {
	_, err := Init(context.Background(), config.ObservabilityConfig{
		OTLPEndpoint: "localhost:4317",
		OTLPProtocol: "grpc",
		ServiceName:  "siteapi",
	})
	assert.Error(t, err)
}

func TestSiteMetrics_NilSafe(t *testing.T) {
	var m *SiteMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordGuardDecision(ctx, "allow", "profile")
		m.RecordInvalidation(ctx, "projects", 3, nil)
		m.RecordMutation(ctx, "projects", "delete", errors.New("boom"))
		m.RecordUpload(ctx, "image/png", nil)
	})
}

func TestSiteMetrics_NoopProvider(t *testing.T) {
	m := Site()
	require.NotNil(t, m)
	m.RecordGuardDecision(context.Background(), "redirect", "anonymous")
}

func TestServerMetrics_Middleware(t *testing.T) {
	m, err := NewServerMetrics()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
