package infrastructure

import (
	"log/slog"
)

// WithComponent tags a logger with the subsystem emitting its records
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithProduct tags a logger with the product a record is about
func WithProduct(logger *slog.Logger, industry, product string) *slog.Logger {
	return logger.With(
		slog.String("industry", industry),
		slog.String("product", product))
}

// WithError attaches err as the "error" attribute. A nil err leaves the
// logger as it is.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}
