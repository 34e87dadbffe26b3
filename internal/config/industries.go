package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"pricelens/pkg/contracts/domain"
)

//go:embed industries.yaml
var defaultIndustriesYAML []byte

// Industries is the static factor configuration, keyed by industry name
type Industries struct {
	ordered []domain.Industry
	byName  map[string]domain.Industry
}

type industriesFile struct {
	Industries []domain.Industry `yaml:"industries" validate:"dive"`
}

// DefaultIndustries returns the embedded Pharma/CPG/Wholesale/Retail configuration
func DefaultIndustries() *Industries {
	inds, err := ParseIndustries(defaultIndustriesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded industries.yaml is invalid: %v", err))
	}
	return inds
}

// LoadIndustries reads an industries YAML file; an empty path returns the defaults
func LoadIndustries(path string) (*Industries, error) {
	if path == "" {
		return DefaultIndustries(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read industries file: %w", err)
	}

	inds, err := ParseIndustries(data)
	if err != nil {
		return nil, fmt.Errorf("industries file %s: %w", path, err)
	}
	return inds, nil
}

// ParseIndustries decodes and validates an industries document
func ParseIndustries(data []byte) (*Industries, error) {
	var doc industriesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse industries: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid industries: %w", err)
	}

	return NewIndustries(doc.Industries...)
}

// NewIndustries builds the lookup from explicit definitions
func NewIndustries(defs ...domain.Industry) (*Industries, error) {
	inds := &Industries{byName: make(map[string]domain.Industry, len(defs))}
	for _, d := range defs {
		if _, dup := inds.byName[d.Name]; dup {
			return nil, fmt.Errorf("industry %q defined twice", d.Name)
		}
		inds.byName[d.Name] = d
		inds.ordered = append(inds.ordered, d)
	}
	return inds, nil
}

// Lookup returns the configuration for name. Unknown industries get an empty
// configuration carrying only the name.
func (i *Industries) Lookup(name string) domain.Industry {
	if d, ok := i.byName[name]; ok {
		return d
	}
	return domain.Industry{Name: name}
}

// Factors returns the display factors configured for name, empty when unknown
func (i *Industries) Factors(name string) []string {
	return i.Lookup(name).Factors
}

// InfluencingFactors returns the regression inputs configured for name
func (i *Industries) InfluencingFactors(name string) []string {
	return i.Lookup(name).InfluencingFactors()
}

// All returns every configured industry in file order
func (i *Industries) All() []domain.Industry {
	out := make([]domain.Industry, len(i.ordered))
	copy(out, i.ordered)
	return out
}
