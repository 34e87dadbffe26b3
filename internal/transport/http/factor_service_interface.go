package http

import (
	"context"

	"pricelens/internal/services"
	"pricelens/pkg/contracts/domain"
)

// FactorServiceInterface defines the catalog and regression operations the handlers need
type FactorServiceInterface interface {
	ListIndustries(ctx context.Context) ([]string, error)
	ListProducts(ctx context.Context, industry string) ([]string, error)
	DefaultFactors(ctx context.Context, industry, product string) ([]interface{}, error)
	Coefficients(ctx context.Context, industry, product string) (domain.CoefficientSet, error)
	Industries() []domain.IndustrySummary
	Industry(name string) domain.IndustrySummary
	CacheStats() services.CacheStats
}

var _ FactorServiceInterface = (*services.FactorService)(nil)
