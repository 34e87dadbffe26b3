package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/dataset"
	"pricelens/internal/infrastructure"
	"pricelens/internal/regression"
	"pricelens/pkg/contracts/domain"
)

const tracerName = "pricelens/services"

// FactorService answers catalog, default-factor and coefficient queries for
// the products under the data root.
type FactorService struct {
	catalog    *catalog.Catalog
	industries *config.Industries
	cache      *CoefficientCache
	fitter     regression.Fitter
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// FactorServiceOption customises a FactorService
type FactorServiceOption func(*FactorService)

// WithFitter replaces the default ridge fitter
func WithFitter(f regression.Fitter) FactorServiceOption {
	return func(s *FactorService) { s.fitter = f }
}

// WithMetrics records cache and fit metrics
func WithMetrics(m *infrastructure.BusinessMetrics) FactorServiceOption {
	return func(s *FactorService) { s.metrics = m }
}

// WithTracer sets the tracer used for service spans
func WithTracer(t trace.Tracer) FactorServiceOption {
	return func(s *FactorService) { s.tracer = t }
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) FactorServiceOption {
	return func(s *FactorService) { s.logger = l }
}

// NewFactorService wires a service over the catalog, the industry
// configuration and a coefficient cache owned by the caller.
func NewFactorService(cat *catalog.Catalog, industries *config.Industries, cache *CoefficientCache, opts ...FactorServiceOption) *FactorService {
	s := &FactorService{
		catalog:    cat,
		industries: industries,
		cache:      cache,
		fitter:     regression.NewRidge(regression.DefaultAlpha),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.logger = infrastructure.WithComponent(s.logger, "factor_service")

	s.logger.Info("FactorService initialized",
		slog.String("data_dir", cat.Root()),
		slog.Int("industries", len(industries.All())))

	return s
}

// ListIndustries returns the industry directories under the data root
func (s *FactorService) ListIndustries(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "FactorService.ListIndustries")
	defer span.End()

	industries, err := s.catalog.ListIndustries(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return industries, nil
}

// ListProducts returns the products of an industry
func (s *FactorService) ListProducts(ctx context.Context, industry string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "FactorService.ListProducts",
		trace.WithAttributes(attribute.String("industry", industry)))
	defer span.End()

	products, err := s.catalog.ListProducts(ctx, industry)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "ListProducts: completed",
		slog.String("industry", industry),
		slog.Int("count", len(products)))
	return products, nil
}

// DefaultFactors returns the last observation of a product restricted to the
// industry's display factors. Factors without a column are skipped, as is
// everything for an unconfigured industry. Integer cells come back as int64,
// numeric cells as float64, text as string and absent cells as nil.
func (s *FactorService) DefaultFactors(ctx context.Context, industry, product string) ([]interface{}, error) {
	ctx, span := s.tracer.Start(ctx, "FactorService.DefaultFactors",
		trace.WithAttributes(
			attribute.String("industry", industry),
			attribute.String("product", product)))
	defer span.End()

	table, err := s.loadProduct(ctx, industry, product)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	row, err := table.LastRow()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, processing("last row", err)
	}

	values := make([]interface{}, 0)
	for _, factor := range s.industries.Factors(industry) {
		if !table.Has(factor) {
			continue
		}
		col, err := table.Column(factor)
		if err != nil {
			return nil, processing("column", err)
		}
		values = append(values, col.Value(row))
	}

	return values, nil
}

// Coefficients returns ridge coefficients of the industry target over its
// influencing factors, fitting only when the product file changed since the
// last successful fit.
func (s *FactorService) Coefficients(ctx context.Context, industry, product string) (domain.CoefficientSet, error) {
	ctx, span := s.tracer.Start(ctx, "FactorService.Coefficients",
		trace.WithAttributes(
			attribute.String("industry", industry),
			attribute.String("product", product)))
	defer span.End()

	path, err := s.catalog.ProductPath(industry, product)
	if err != nil {
		return domain.CoefficientSet{}, err
	}

	// the fit is shared by every concurrent caller for this key, so it must
	// outlive whichever caller started it
	fitCtx := context.WithoutCancel(ctx)
	set, hit, err := s.cache.GetOrCompute(path, industry, product, func() (domain.CoefficientSet, error) {
		return s.fit(fitCtx, path, industry, product)
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CoefficientSet{}, catalog.ProductNotFound(industry, product, err)
		}
		return domain.CoefficientSet{}, processing("coefficients", err)
	}

	infrastructure.RecordCoefficientLookup(ctx, s.metrics, industry, hit)
	span.SetAttributes(attribute.Bool("cache.hit", hit))

	return set, nil
}

func (s *FactorService) fit(ctx context.Context, path, industry, product string) (domain.CoefficientSet, error) {
	start := time.Now()
	set, err := s.fitProduct(path, industry, product)
	infrastructure.RecordCoefficientFit(ctx, s.metrics, industry, time.Since(start), err)

	logger := infrastructure.WithProduct(s.logger, industry, product)
	if err != nil {
		infrastructure.WithError(logger, err).WarnContext(ctx, "coefficient fit failed")
		return domain.CoefficientSet{}, err
	}

	logger.InfoContext(ctx, "coefficients fitted",
		slog.Duration("duration", time.Since(start)))
	return set, nil
}

func (s *FactorService) fitProduct(path, industry, product string) (domain.CoefficientSet, error) {
	ind := s.industries.Lookup(industry)
	if !ind.IsConfigured() {
		return domain.CoefficientSet{}, fmt.Errorf("%w: %s", ErrIndustryNotConfigured, industry)
	}

	table, err := dataset.Read(path)
	if err != nil {
		return domain.CoefficientSet{}, err
	}

	factors := ind.InfluencingFactors()
	x, rows, err := table.Matrix(factors)
	if err != nil {
		return domain.CoefficientSet{}, err
	}
	targetCol, err := table.Column(ind.Target)
	if err != nil {
		return domain.CoefficientSet{}, err
	}
	y, err := targetCol.Floats()
	if err != nil {
		return domain.CoefficientSet{}, err
	}

	model, err := s.fitter.Fit(x, rows, len(factors), y)
	if err != nil {
		return domain.CoefficientSet{}, err
	}

	return domain.CoefficientSet{
		Industry:  industry,
		Product:   product,
		Factors:   factors,
		Weights:   model.Coef,
		Intercept: model.Intercept,
	}, nil
}

// Industries returns the configured industries
func (s *FactorService) Industries() []domain.IndustrySummary {
	all := s.industries.All()
	out := make([]domain.IndustrySummary, len(all))
	for i, ind := range all {
		out[i] = ind.Summary()
	}
	return out
}

// Industry returns the configuration for one industry, empty when unknown
func (s *FactorService) Industry(name string) domain.IndustrySummary {
	return s.industries.Lookup(name).Summary()
}

// CacheStats reports the coefficient cache counters
func (s *FactorService) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *FactorService) loadProduct(ctx context.Context, industry, product string) (*dataset.Table, error) {
	path, err := s.catalog.ProductPath(industry, product)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := dataset.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, catalog.ProductNotFound(industry, product, err)
		}
		return nil, processing("read", err)
	}
	return table, nil
}
