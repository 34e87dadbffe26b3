package services

import (
	"errors"

	"pricelens/internal/catalog"
)

var (
	// ErrIndustryNotFound is matched by errors for a missing industry directory
	ErrIndustryNotFound = catalog.ErrIndustryNotFound
	// ErrProductNotFound is matched by errors for a missing product file
	ErrProductNotFound = catalog.ErrProductNotFound
	// ErrIndustryNotConfigured means the industry has no target variable
	ErrIndustryNotConfigured = errors.New("industry not configured")
)

// ProcessingError is any failure while reading or fitting a product file.
// Error returns the cause's message unchanged.
type ProcessingError struct {
	Op  string
	Err error
}

func (e *ProcessingError) Error() string {
	return e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func processing(op string, err error) error {
	var nf *catalog.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return &ProcessingError{Op: op, Err: err}
}
