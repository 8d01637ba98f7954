package matching

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PreferenceWeights are the points each customer preference criterion is worth.
type PreferenceWeights struct {
	PropertyType int `yaml:"property_type"`
	Budget       int `yaml:"budget"`
	Location     int `yaml:"location"`
	Bedrooms     int `yaml:"bedrooms"`
	Bathrooms    int `yaml:"bathrooms"`
	Amenities    int `yaml:"amenities"`
	// Threshold is the minimum confidence score persisted as a recommendation.
	Threshold int `yaml:"threshold"`
}

// LeadPropertyWeights score a property from the sales pipeline's point of view.
type LeadPropertyWeights struct {
	ExactBudget    int     `yaml:"exact_budget"`
	NearBudget     int     `yaml:"near_budget"`
	StretchBudget  int     `yaml:"stretch_budget"`
	PerformanceCap float64 `yaml:"performance_cap"`
	StrongAffinity int     `yaml:"strong_affinity"`
	BaseAffinity   int     `yaml:"base_affinity"`
}

// DemandWeights weight matching leads by how likely their segment is to close.
type DemandWeights struct {
	HNI      int `yaml:"hni"`
	Investor int `yaml:"investor"`
	Retail   int `yaml:"retail"`
}

// Weights groups every tunable coefficient of the matching engines.
type Weights struct {
	Preference   PreferenceWeights   `yaml:"preference"`
	LeadProperty LeadPropertyWeights `yaml:"lead_property"`
	Demand       DemandWeights       `yaml:"demand"`
}

// DefaultWeights returns the production business constants.
func DefaultWeights() Weights {
	return Weights{
		Preference: PreferenceWeights{
			PropertyType: 25,
			Budget:       25,
			Location:     20,
			Bedrooms:     15,
			Bathrooms:    10,
			Amenities:    5,
			Threshold:    50,
		},
		LeadProperty: LeadPropertyWeights{
			ExactBudget:    40,
			NearBudget:     30,
			StretchBudget:  20,
			PerformanceCap: 30,
			StrongAffinity: 30,
			BaseAffinity:   15,
		},
		Demand: DemandWeights{
			HNI:      3,
			Investor: 2,
			Retail:   1,
		},
	}
}

// Validate rejects weights that could push scores outside [0, 100].
func (w Weights) Validate() error {
	p := w.Preference
	for name, v := range map[string]int{
		"preference.property_type": p.PropertyType,
		"preference.budget":        p.Budget,
		"preference.location":      p.Location,
		"preference.bedrooms":      p.Bedrooms,
		"preference.bathrooms":     p.Bathrooms,
		"preference.amenities":     p.Amenities,
		"lead_property.exact":      w.LeadProperty.ExactBudget,
		"lead_property.near":       w.LeadProperty.NearBudget,
		"lead_property.stretch":    w.LeadProperty.StretchBudget,
		"lead_property.strong":     w.LeadProperty.StrongAffinity,
		"lead_property.base":       w.LeadProperty.BaseAffinity,
		"demand.hni":               w.Demand.HNI,
		"demand.investor":          w.Demand.Investor,
		"demand.retail":            w.Demand.Retail,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %d", name, v)
		}
	}
	if sum := p.PropertyType + p.Budget + p.Location + p.Bedrooms + p.Bathrooms + p.Amenities; sum > 100 {
		return fmt.Errorf("preference weights sum to %d, must not exceed 100", sum)
	}
	if p.Threshold < 0 || p.Threshold > 100 {
		return fmt.Errorf("preference threshold must be within 0-100, got %d", p.Threshold)
	}
	if w.LeadProperty.PerformanceCap < 0 {
		return fmt.Errorf("lead_property.performance_cap must not be negative")
	}
	return nil
}

// LoadWeightsFromFile overlays the YAML file at path on DefaultWeights.
// Keys missing from the file keep their default value.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := yaml.Unmarshal(b, &w); err != nil {
		return DefaultWeights(), fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), err
	}
	return w, nil
}
