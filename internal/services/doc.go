// Package services implements the business logic between the HTTP handlers
// and the data root.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Dependencies are injected through constructors and options
//	2. Every call takes a context for cancellation and tracing
//	3. Errors keep their cause so handlers can classify them with errors.Is/As
//
// # Available Services
//
//	- FactorService: industry/product listing, default factor values and
//	  ridge coefficients
//	- CoefficientCache: digest-keyed store of fitted coefficients
//	- HealthService: liveness, readiness and version documents
//
// # Error Handling
//
// Missing industries and products come back as *catalog.NotFoundError, which
// matches ErrIndustryNotFound or ErrProductNotFound. Everything else that
// goes wrong while reading or fitting a product is a *ProcessingError whose
// message is the raw cause.
//
// # Testing
//
// The fitter is an interface so tests can count or fail fits:
//
//	svc := NewFactorService(cat, industries, NewCoefficientCache(), WithFitter(counting))
package services
