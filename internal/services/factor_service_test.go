package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/infrastructure"
	"pricelens/internal/regression"
	"pricelens/pkg/contracts/domain"
)

func TestListIndustriesAndProducts(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Paracetamol", pharmaCSV(5))
	writeProduct(t, root, "Pharma", "Ibuprofen", pharmaCSV(5))
	writeProduct(t, root, "Retail", "Shoes", "a\n1\n")
	svc, _, _ := newTestService(t, root)
	ctx := context.Background()

	industries, err := svc.ListIndustries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pharma", "Retail"}, industries)

	products, err := svc.ListProducts(ctx, "Pharma")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ibuprofen", "Paracetamol"}, products)

	_, err = svc.ListProducts(ctx, "Foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndustryNotFound))
	assert.Equal(t, "Industry directory Foo not found", err.Error())
}

func TestDefaultFactors(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Mixed",
		"MRP,Sales Price,Seasonal,Expiry days,Demand Score,Extra\n"+
			"10.5,9,1,30,high,x\n"+
			"12.25,11,0,,low,y\n")
	svc, _, _ := newTestService(t, root)

	values, err := svc.DefaultFactors(context.Background(), "Pharma", "Mixed")
	require.NoError(t, err)

	// Display order: Sales Price, MRP, ..., Seasonal, Expiry days, Demand Score
	want := []interface{}{int64(11), 12.25, int64(0), nil, "low"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("DefaultFactors mismatch (-want +got):\n%s", diff)
	}

	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `[11, 12.25, 0, null, "low"]`, string(data))
}

func TestDefaultFactorsSkipsAbsentColumns(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Sparse", "MRP,Unrelated\n1,2\n3,4\n")
	writeProduct(t, root, "Foo", "Bar", "MRP\n1\n")
	svc, _, _ := newTestService(t, root)
	ctx := context.Background()

	values, err := svc.DefaultFactors(ctx, "Pharma", "Sparse")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(3)}, values)
	assert.LessOrEqual(t, len(values), len(config.DefaultIndustries().Factors("Pharma")))

	values, err = svc.DefaultFactors(ctx, "Foo", "Bar")
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)
}

func TestDefaultFactorsNonFiniteCells(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Odd", "Sales Price,MRP,Comp Price\n1,2,3\n4,inf,None\n")
	svc, _, _ := newTestService(t, root)

	values, err := svc.DefaultFactors(context.Background(), "Pharma", "Odd")
	require.NoError(t, err)

	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.JSONEq(t, `[4, null, null]`, string(data))
}

func TestDefaultFactorsErrors(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Empty", "")
	writeProduct(t, root, "Pharma", "HeaderOnly", "MRP,Sales Price\n")
	svc, _, _ := newTestService(t, root)
	ctx := context.Background()

	_, err := svc.DefaultFactors(ctx, "Pharma", "Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "Product file Missing.csv not found in Pharma", err.Error())

	_, err = svc.DefaultFactors(ctx, "Nowhere", "Missing")
	assert.Equal(t, "Product file Missing.csv not found in Nowhere", err.Error())

	for _, product := range []string{"Empty", "HeaderOnly"} {
		_, err = svc.DefaultFactors(ctx, "Pharma", product)
		require.Error(t, err, product)
		var perr *ProcessingError
		assert.True(t, errors.As(err, &perr), product)
		assert.False(t, errors.Is(err, ErrProductNotFound), product)
	}
}

func TestCoefficientsPharma(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "Paracetamol", pharmaCSV(30))
	svc, _, _ := newTestService(t, root)

	set, err := svc.Coefficients(context.Background(), "Pharma", "Paracetamol")
	require.NoError(t, err)

	influencing := config.DefaultIndustries().InfluencingFactors("Pharma")
	assert.Equal(t, influencing, set.Factors)
	require.Len(t, set.Weights, 8)
	for i, w := range set.Weights {
		assert.False(t, math.IsNaN(w) || math.IsInf(w, 0), set.Factors[i])
	}
	assert.False(t, math.IsNaN(set.Intercept))

	data, err := json.Marshal(set)
	require.NoError(t, err)
	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 9)
	assert.Contains(t, decoded, "const")
}

func TestCoefficientsCacheHit(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "P", pharmaCSV(20))
	svc, _, fitter := newTestService(t, root)
	ctx := context.Background()

	first, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)
	second, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)

	assert.Equal(t, int64(1), fitter.calls.Load())
	assert.Equal(t, first, second)

	stats := svc.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Digests)
}

func TestCoefficientsRefitOnDigestMismatch(t *testing.T) {
	root := t.TempDir()
	path := writeProduct(t, root, "Pharma", "P", pharmaCSV(20))
	svc, cache, fitter := newTestService(t, root)
	ctx := context.Background()

	first, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)

	cache.mu.Lock()
	cache.digests[path] = "stale"
	cache.mu.Unlock()

	second, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fitter.calls.Load())
	assert.Equal(t, first, second)
}

func TestCoefficientsRefitOnContentChange(t *testing.T) {
	root := t.TempDir()
	original := pharmaCSV(20)
	path := writeProduct(t, root, "Pharma", "P", original)
	svc, _, fitter := newTestService(t, root)
	ctx := context.Background()

	first, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)

	// Same byte length, different last-row target
	lines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")
	last := strings.Split(lines[len(lines)-1], ",")
	last[1] = swapDigit(last[1])
	lines[len(lines)-1] = strings.Join(last, ",")
	changed := strings.Join(lines, "\n") + "\n"
	require.Equal(t, len(original), len(changed))
	require.NoError(t, os.WriteFile(path, []byte(changed), 0644))

	second, err := svc.Coefficients(ctx, "Pharma", "P")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fitter.calls.Load())
	assert.NotEqual(t, first.Intercept, second.Intercept)
}

func swapDigit(s string) string {
	b := []byte(s)
	if b[0] == '9' {
		b[0] = '1'
	} else {
		b[0]++
	}
	return string(b)
}

func TestCoefficientsFailuresAreNotCached(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "NoTarget", "MRP,Comp Price\n1,2\n3,4\n")
	writeProduct(t, root, "Pharma", "Text", strings.Replace(pharmaCSV(4), "2024-01-04,", "2024-01-04,abc", 1))
	svc, cache, _ := newTestService(t, root)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Coefficients(ctx, "Pharma", "NoTarget")
		require.Error(t, err)
		var perr *ProcessingError
		assert.True(t, errors.As(err, &perr))
	}
	assert.Equal(t, uint64(2), cache.Stats().Failures)
	assert.Equal(t, 0, cache.Stats().Entries)
	assert.Equal(t, 0, cache.Stats().Digests)

	_, err := svc.Coefficients(ctx, "Pharma", "Text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not convert string to float")
}

func TestCoefficientsUnconfiguredIndustry(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Foo", "Bar", "a,b\n1,2\n")
	svc, _, _ := newTestService(t, root)

	_, err := svc.Coefficients(context.Background(), "Foo", "Bar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndustryNotConfigured))
	assert.False(t, errors.Is(err, ErrProductNotFound))
}

func TestCoefficientsNotFound(t *testing.T) {
	svc, _, fitter := newTestService(t, t.TempDir())

	_, err := svc.Coefficients(context.Background(), "Pharma", "Ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "Product file Ghost.csv not found in Pharma", err.Error())
	assert.Equal(t, int64(0), fitter.calls.Load())
}

func TestCoefficientsConcurrentCallsFitOnce(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "P", pharmaCSV(50))
	svc, _, fitter := newTestService(t, root)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Coefficients(context.Background(), "Pharma", "P")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fitter.calls.Load())
}

// gatedFitter blocks every fit until release is closed
type gatedFitter struct {
	inner   regression.Fitter
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int64
}

func (f *gatedFitter) Fit(x []float64, rows, cols int, y []float64) (*regression.Model, error) {
	f.calls.Add(1)
	f.once.Do(func() { close(f.started) })
	<-f.release
	return f.inner.Fit(x, rows, cols, y)
}

func TestCoefficientsCancelledCallerDoesNotFailOthers(t *testing.T) {
	root := t.TempDir()
	writeProduct(t, root, "Pharma", "P", pharmaCSV(50))
	fitter := &gatedFitter{
		inner:   regression.NewRidge(1),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewFactorService(catalog.New(root), config.DefaultIndustries(), NewCoefficientCache(),
		WithFitter(fitter))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Coefficients(cancelled, "Pharma", "P")
	}()

	select {
	case <-fitter.started:
	case <-time.After(5 * time.Second):
		close(fitter.release)
		wg.Wait()
		t.Fatalf("fit never started: %v", errs[0])
	}

	var set domain.CoefficientSet
	wg.Add(1)
	go func() {
		defer wg.Done()
		set, errs[1] = svc.Coefficients(context.Background(), "Pharma", "P")
	}()

	time.Sleep(20 * time.Millisecond)
	close(fitter.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, config.DefaultIndustries().InfluencingFactors("Pharma"), set.Factors)
	assert.Equal(t, int64(1), fitter.calls.Load())
}

func TestCoefficientsWithMetrics(t *testing.T) {
	metrics, err := infrastructure.CreateBusinessMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	root := t.TempDir()
	writeProduct(t, root, "Pharma", "P", pharmaCSV(10))
	svc := NewFactorService(catalog.New(root), config.DefaultIndustries(), NewCoefficientCache(),
		WithMetrics(metrics), WithFitter(regression.NewRidge(2)))

	_, err = svc.Coefficients(context.Background(), "Pharma", "P")
	assert.NoError(t, err)
}

func TestIndustries(t *testing.T) {
	svc, _, _ := newTestService(t, t.TempDir())

	all := svc.Industries()
	require.Len(t, all, 4)
	names := make([]string, len(all))
	for i, ind := range all {
		names[i] = ind.Name
	}
	assert.Equal(t, []string{"Pharma", "CPG", "Wholesale", "Retail"}, names)

	unknown := svc.Industry("Foo")
	assert.Equal(t, "Foo", unknown.Name)
	assert.Empty(t, unknown.Factors)
	assert.Empty(t, unknown.Target)
}
