// Package regression fits linear models to dataset columns.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultAlpha is the L2 penalty used when none is configured
const DefaultAlpha = 1.0

var (
	// ErrNoSamples is returned for a design matrix without rows
	ErrNoSamples = errors.New("found array with 0 sample(s)")
	// ErrNoFeatures is returned for a design matrix without columns
	ErrNoFeatures = errors.New("found array with 0 feature(s)")
	// ErrSingular is returned when the normal equations cannot be solved
	ErrSingular = errors.New("matrix is singular")
	// ErrNotFinite is returned when the input holds NaN or infinity
	ErrNotFinite = errors.New("input contains NaN or infinity")
)

// Model is a fitted linear model y = X·Coef + Intercept
type Model struct {
	Coef      []float64
	Intercept float64
}

// Predict evaluates the model for one observation
func (m *Model) Predict(x []float64) float64 {
	return floats.Dot(m.Coef, x) + m.Intercept
}

// Fitter fits a model to a row-major design matrix x (rows × cols) and
// target y.
type Fitter interface {
	Fit(x []float64, rows, cols int, y []float64) (*Model, error)
}

// Ridge is L2-regularised least squares with an unpenalised intercept
type Ridge struct {
	Alpha float64
}

// NewRidge returns a ridge fitter; non-positive alpha falls back to DefaultAlpha
func NewRidge(alpha float64) *Ridge {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &Ridge{Alpha: alpha}
}

// Fit centres x and y, solves (XcᵀXc + αI)β = Xcᵀyc and recovers the
// intercept as ȳ - x̄·β.
func (r *Ridge) Fit(x []float64, rows, cols int, y []float64) (*Model, error) {
	switch {
	case rows == 0:
		return nil, ErrNoSamples
	case cols == 0:
		return nil, ErrNoFeatures
	case len(x) != rows*cols:
		return nil, fmt.Errorf("design matrix has %d values, want %d", len(x), rows*cols)
	case len(y) != rows:
		return nil, fmt.Errorf("found input variables with inconsistent numbers of samples: [%d, %d]", rows, len(y))
	}
	if !allFinite(x) || !allFinite(y) {
		return nil, ErrNotFinite
	}

	X := mat.NewDense(rows, cols, append([]float64(nil), x...))
	means := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		means[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	X.Apply(func(_, j int, v float64) float64 { return v - means[j] }, X)
	yc := mat.NewVecDense(rows, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, X.T())
	for j := 0; j < cols; j++ {
		gram.SetSym(j, j, gram.At(j, j)+r.Alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(X.T(), yc)

	var beta mat.VecDense
	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); ok {
		if err := chol.SolveVecTo(&beta, &rhs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	} else if err := beta.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = beta.AtVec(j)
	}
	if !allFinite(coef) {
		return nil, ErrSingular
	}

	return &Model{
		Coef:      coef,
		Intercept: yMean - floats.Dot(means, coef),
	}, nil
}

func allFinite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
