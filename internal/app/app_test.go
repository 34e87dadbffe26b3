package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelens/internal/config"
	"pricelens/internal/shared/testutil"
	"pricelens/internal/transport/respond"
)

func testConfig(dataDir string) *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Paths.DataDir = dataDir
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "prometheus"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.OTelProviders.Shutdown(context.Background())
	})
	return a
}

func get(t *testing.T, a *Application, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}

func TestNew_InvalidIndustriesFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "industries.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("industries:\n  - name: Pharma\n"), 0o644))

	cfg := testConfig(dir)
	cfg.Paths.IndustriesFile = bad

	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load industries")
}

func TestApplication_Routes(t *testing.T) {
	dataDir := t.TempDir()
	testutil.WriteProduct(t, dataDir, "Pharma", "aspirin", testutil.PharmaCSV(8))
	testutil.WriteProduct(t, dataDir, "Pharma", "ibuprofen", testutil.PharmaCSV(6))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Pharma", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "Toys"), 0o755))

	a := newTestApp(t, testConfig(dataDir))

	t.Run("products", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/data/Pharma")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, respond.ContentTypeJSON, rec.Header().Get("Content-Type"))
		var products []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
		assert.ElementsMatch(t, []string{"aspirin", "ibuprofen"}, products)
	})

	t.Run("empty industry", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/data/Toys")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("missing industry", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/data/Foo")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, respond.ContentTypeJSON, rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Industry directory Foo not found"}`, rec.Body.String())
	})

	t.Run("default factors", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/data/Pharma/aspirin")

		require.Equal(t, http.StatusOK, rec.Code)
		// last of 8 rows, i = 7
		assert.JSONEq(t, `[111,114,96,351,1,377,8,1,67]`, rec.Body.String())
	})

	t.Run("missing product", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/data/Pharma/ghost")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Product file ghost.csv not found in Pharma"}`, rec.Body.String())
	})

	t.Run("coefficients", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/coefficients/Pharma/aspirin")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var coefs map[string]float64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coefs))
		assert.Len(t, coefs, 9)
		assert.Contains(t, coefs, "const")
		assert.NotContains(t, coefs, "Sales Price")
		assert.True(t, strings.HasPrefix(rec.Body.String(), `{"MRP":`))

		again := get(t, a, http.MethodPost, "/coefficients/Pharma/aspirin")
		require.Equal(t, http.StatusOK, again.Code)
		assert.Equal(t, rec.Body.String(), again.Body.String())

		stats := a.Services.Cache.Stats()
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, uint64(1), stats.Hits)
	})

	t.Run("industries", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/industries")

		require.Equal(t, http.StatusOK, rec.Code)
		var industries []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &industries))
		names := make([]string, 0, len(industries))
		for _, ind := range industries {
			names = append(names, ind.Name)
		}
		assert.ElementsMatch(t, []string{"Pharma", "CPG", "Wholesale", "Retail"}, names)
	})

	t.Run("index", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Pharma")
		assert.Contains(t, rec.Body.String(), "Toys")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/nope")

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, respond.ContentTypeJSON, rec.Header().Get("Content-Type"))
	})

	t.Run("request id echoed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.Header.Set("X-Request-ID", "req-123")
		a.Router.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("ready", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(t, a, http.MethodGet, "/metrics")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "coefficient_cache_misses")
		assert.Contains(t, rec.Body.String(), "http_requests")
	})
}

func TestApplication_CoefficientsRefitOnChange(t *testing.T) {
	dataDir := t.TempDir()
	path := testutil.WriteProduct(t, dataDir, "Pharma", "aspirin", testutil.PharmaCSV(8))

	a := newTestApp(t, testConfig(dataDir))

	first := get(t, a, http.MethodGet, "/coefficients/Pharma/aspirin")
	require.Equal(t, http.StatusOK, first.Code)

	require.NoError(t, os.WriteFile(path, []byte(testutil.PharmaCSV(12)), 0o644))

	second := get(t, a, http.MethodGet, "/coefficients/Pharma/aspirin")
	require.Equal(t, http.StatusOK, second.Code)
	assert.NotEqual(t, first.Body.String(), second.Body.String())
	assert.Equal(t, uint64(2), a.Services.Cache.Stats().Misses)
}

func TestApplication_CoefficientsFailure(t *testing.T) {
	dataDir := t.TempDir()
	testutil.WriteProduct(t, dataDir, "Pharma", "broken", "Sales Price,MRP\n1,2\n")
	testutil.WriteProduct(t, dataDir, "Toys", "blocks", testutil.PharmaCSV(4))

	logger, logs := testutil.NewTestLogger(t)
	a, err := New(testConfig(dataDir), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })

	rec := get(t, a, http.MethodGet, "/coefficients/Pharma/broken")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Comp Price")

	rec = get(t, a, http.MethodGet, "/coefficients/Toys/blocks")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"industry not configured: Toys"}`, rec.Body.String())

	assert.Equal(t, 0, a.Services.Cache.Stats().Entries)

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "coefficient fit failed")
	record, ok := logs.Find("request failed")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusInternalServerError), record.Attrs["status"])
	assert.Equal(t, "error_handler", record.Attrs["component"])
}

func TestApplication_NotReadyWithoutDataDir(t *testing.T) {
	a := newTestApp(t, testConfig(filepath.Join(t.TempDir(), "missing")))

	rec := get(t, a, http.MethodGet, "/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.RPS = 0.001
	cfg.Security.RateLimit.Burst = 1

	a := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, a, http.MethodGet, "/health/live").Code)

	rec := get(t, a, http.MethodGet, "/health/live")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestApplication_StartStop(t *testing.T) {
	dataDir := t.TempDir()
	testutil.WriteProduct(t, dataDir, "Pharma", "aspirin", testutil.PharmaCSV(5))

	a := newTestApp(t, testConfig(dataDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx, cancel))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + a.Addr() + "/data/Pharma")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["aspirin"]`, string(body))

	require.NoError(t, a.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown does not cancel the run context")
}
