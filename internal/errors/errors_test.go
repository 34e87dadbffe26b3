package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	cause := errors.New("no such file")
	err := NotFound("Product file Aspirin.csv not found in Pharma", cause)

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Product file Aspirin.csv not found in Pharma", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestProcessing(t *testing.T) {
	cause := errors.New(`column "MRP" not found`)
	err := Processing(cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, cause.Error(), err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestAPIError_Render(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	err := New(http.StatusTeapot, "short and stout")
	require.NoError(t, err.Render(rec, req))

	status, ok := req.Context().Value(render.StatusCtxKey).(int)
	require.True(t, ok)
	assert.Equal(t, http.StatusTeapot, status)
}
