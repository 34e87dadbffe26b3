package services

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/regression"
)

var pharmaHeader = []string{
	"Date", "Sales Price", "MRP", "Comp Price", "Inventory levels", "Seasonal",
	"Expiry days", "Demand Score", "Govt regulations", "Cost of Manufacturing",
}

// pharmaCSV builds a deterministic product file with rows observations
func pharmaCSV(rows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(pharmaHeader, ",") + "\n")
	for i := 0; i < rows; i++ {
		mrp := 100 + float64(i%7)*2.5
		comp := 95 + float64((i*3)%5)
		inv := 500 + (i*37)%120
		seasonal := i % 2
		expiry := 180 + (i*11)%60
		demand := 0.5 + float64(i%4)/10
		govt := (i / 3) % 2
		cost := 40 + float64((i*5)%9)
		price := 0.6*mrp + 0.3*comp - 0.01*float64(inv) + 2*float64(seasonal) + 0.2*cost + float64(i%3)
		fmt.Fprintf(&b, "2024-01-%02d,%.2f,%.2f,%.0f,%d,%d,%d,%.1f,%d,%.1f\n",
			i%28+1, price, mrp, comp, inv, seasonal, expiry, demand, govt, cost)
	}
	return b.String()
}

func writeProduct(t *testing.T, root, industry, product, content string) string {
	t.Helper()
	dir := filepath.Join(root, industry)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, product+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type countingFitter struct {
	inner regression.Fitter
	calls atomic.Int64
}

func (f *countingFitter) Fit(x []float64, rows, cols int, y []float64) (*regression.Model, error) {
	f.calls.Add(1)
	return f.inner.Fit(x, rows, cols, y)
}

func newTestService(t *testing.T, root string) (*FactorService, *CoefficientCache, *countingFitter) {
	t.Helper()
	cache := NewCoefficientCache()
	fitter := &countingFitter{inner: regression.NewRidge(1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := NewFactorService(catalog.New(root), config.DefaultIndustries(), cache,
		WithFitter(fitter), WithLogger(logger))
	return svc, cache, fitter
}
