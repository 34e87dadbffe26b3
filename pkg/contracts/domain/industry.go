package domain

// Industry is a configured vertical with its own factor schema and regression target
type Industry struct {
	Name    string   `json:"name" yaml:"name" validate:"required"`
	Target  string   `json:"target" yaml:"target" validate:"required"`
	Factors []string `json:"factors" yaml:"factors" validate:"required,min=1,dive,required"`
}

// InfluencingFactors returns the factors used as regression inputs: every
// configured factor except the target, in configured order.
func (i Industry) InfluencingFactors() []string {
	out := make([]string, 0, len(i.Factors))
	for _, f := range i.Factors {
		if f == i.Target {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsConfigured reports whether the industry carries a usable configuration
func (i Industry) IsConfigured() bool {
	return i.Target != "" && len(i.Factors) > 0
}

// IndustrySummary is the JSON view of an industry configuration
type IndustrySummary struct {
	Name               string   `json:"name"`
	Target             string   `json:"target"`
	Factors            []string `json:"factors"`
	InfluencingFactors []string `json:"influencing_factors"`
}

// Summary converts the industry into its JSON view
func (i Industry) Summary() IndustrySummary {
	factors := i.Factors
	if factors == nil {
		factors = []string{}
	}
	return IndustrySummary{
		Name:               i.Name,
		Target:             i.Target,
		Factors:            factors,
		InfluencingFactors: i.InfluencingFactors(),
	}
}
