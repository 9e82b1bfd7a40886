package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness-agent/internal/assessment"
	"wellness-agent/internal/config"
	"wellness-agent/internal/report"
)

func testRouter(origins []string) http.Handler {
	cfg := &config.Config{CORSOrigins: origins}
	store := assessment.NewMemoryStore(time.Hour)
	engine := assessment.NewEngine(report.NewRenderer())
	svc := assessment.NewService(store, engine, nil, nil)
	return newRouter(cfg, zerolog.Nop(), assessment.NewHandler(svc, nil))
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_StartsAssessment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assessment", strings.NewReader(`{"action":"start","patientName":"Lee"}`))
	testRouter([]string{"*"}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"greeting"`)
	assert.Contains(t, rec.Body.String(), "Lee")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	h := testRouter([]string{"http://clinic.test"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/assessment", nil)
	req.Header.Set("Origin", "http://clinic.test")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://clinic.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/assessment", nil)
	req.Header.Set("Origin", "http://elsewhere.test")
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenStore_Memory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, &config.Config{SessionStore: config.StoreMemory, SessionIdleTimeout: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &assessment.MemoryStore{}, store)
	assert.NoError(t, store.Close())
}

func TestOpenStore_BadRedisURL(t *testing.T) {
	_, err := openStore(context.Background(), &config.Config{SessionStore: config.StoreRedis, RedisURL: "not a url"})
	assert.Error(t, err)
}

func TestRunMigrations_NeedsDatabase(t *testing.T) {
	err := runMigrations(context.Background(), &config.Config{}, "up")
	assert.ErrorIs(t, err, errNoDatabase)
}
