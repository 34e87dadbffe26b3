package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfluencingFactors(t *testing.T) {
	ind := Industry{
		Name:    "Pharma",
		Target:  "Sales Price",
		Factors: []string{"Sales Price", "MRP", "Comp Price"},
	}

	assert.Equal(t, []string{"MRP", "Comp Price"}, ind.InfluencingFactors())
	assert.True(t, ind.IsConfigured())

	summary := ind.Summary()
	assert.Equal(t, "Pharma", summary.Name)
	assert.Equal(t, []string{"MRP", "Comp Price"}, summary.InfluencingFactors)
}

func TestUnconfiguredIndustry(t *testing.T) {
	ind := Industry{Name: "Foo"}

	assert.False(t, ind.IsConfigured())
	assert.Empty(t, ind.InfluencingFactors())

	summary := ind.Summary()
	assert.NotNil(t, summary.Factors)
	assert.NotNil(t, summary.InfluencingFactors)
}
