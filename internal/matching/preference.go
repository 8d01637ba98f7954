// Package matching scores properties against customer preferences and
// against sales leads. The engines are stateless apart from their weights
// and may be shared between goroutines.
package matching

import (
	"strings"

	"propertycrm/server/internal/models"
)

// Reasons attached to a preference match, in evaluation order.
const (
	ReasonPropertyType = "Matches your preferred property type"
	ReasonBudget       = "Within your budget range"
	ReasonLocation     = "In your preferred location"
	ReasonBedrooms     = "Has enough bedrooms"
	ReasonBathrooms    = "Has enough bathrooms"
	ReasonAmenities    = "Includes your desired amenities"
)

// Engine holds the weights shared by all matching operations.
type Engine struct {
	weights Weights
}

func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

// Weights returns the weights the engine was built with.
func (e *Engine) Weights() Weights {
	return e.weights
}

// MatchPreference returns the confidence score of p for a customer's
// preference profile together with one reason per satisfied criterion.
// Criteria are independent; an unset preference contributes nothing.
func (e *Engine) MatchPreference(p models.Property, pref models.CustomerPreferenceProfile) (int, []string) {
	w := e.weights.Preference
	score := 0
	var reasons []string

	if containsType(pref.PropertyTypes, p.Type) {
		score += w.PropertyType
		reasons = append(reasons, ReasonPropertyType)
	}
	if withinBudget(p.Price, pref.BudgetMin, pref.BudgetMax) {
		score += w.Budget
		reasons = append(reasons, ReasonBudget)
	}
	if locationMatches(p.Location, pref.Locations) {
		score += w.Location
		reasons = append(reasons, ReasonLocation)
	}
	if pref.Bedrooms != nil && p.Bedrooms >= *pref.Bedrooms {
		score += w.Bedrooms
		reasons = append(reasons, ReasonBedrooms)
	}
	if pref.Bathrooms != nil && p.Bathrooms >= *pref.Bathrooms {
		score += w.Bathrooms
		reasons = append(reasons, ReasonBathrooms)
	}
	if sharesAmenity(p.Amenities, pref.Amenities) {
		score += w.Amenities
		reasons = append(reasons, ReasonAmenities)
	}

	return score, reasons
}

// Qualifies reports whether a confidence score is high enough to persist.
func (e *Engine) Qualifies(score int) bool {
	return score >= e.weights.Preference.Threshold
}

func containsType(types []models.PropertyType, t models.PropertyType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

// withinBudget is the customer's exact range; both bounds must be set.
func withinBudget(price float64, lo, hi *float64) bool {
	if lo == nil || hi == nil {
		return false
	}
	return *lo <= price && price <= *hi
}

func locationMatches(location string, preferred []string) bool {
	haystack := strings.ToLower(location)
	for _, loc := range preferred {
		needle := strings.ToLower(strings.TrimSpace(loc))
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func sharesAmenity(have, want []string) bool {
	if len(have) == 0 || len(want) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[normalizeAmenity(a)] = struct{}{}
	}
	for _, a := range want {
		key := normalizeAmenity(a)
		if key == "" {
			continue
		}
		if _, ok := set[key]; ok {
			return true
		}
	}
	return false
}

func normalizeAmenity(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
