package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrIndustryNotFound means the industry directory does not exist
	ErrIndustryNotFound = errors.New("industry not found")
	// ErrProductNotFound means the product CSV does not exist
	ErrProductNotFound = errors.New("product not found")
)

// Level identifies which part of the tree is missing
type Level int

const (
	LevelIndustry Level = iota
	LevelProduct
)

// NotFoundError names the missing industry or product. Its message is the
// one returned to API clients.
type NotFoundError struct {
	Level    Level
	Industry string
	Product  string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Level == LevelIndustry {
		return fmt.Sprintf("Industry directory %s not found", e.Industry)
	}
	return fmt.Sprintf("Product file %s.csv not found in %s", e.Product, e.Industry)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the missing level
func (e *NotFoundError) Is(target error) bool {
	if e.Level == LevelIndustry {
		return target == ErrIndustryNotFound
	}
	return target == ErrProductNotFound
}

// IndustryNotFound builds the error for a missing industry directory
func IndustryNotFound(industry string, cause error) error {
	return &NotFoundError{Level: LevelIndustry, Industry: industry, Err: cause}
}

// ProductNotFound builds the error for a missing product file
func ProductNotFound(industry, product string, cause error) error {
	return &NotFoundError{Level: LevelProduct, Industry: industry, Product: product, Err: cause}
}
