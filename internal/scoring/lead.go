// Package scoring holds the lead quality and property interest calculations.
// Every function here is pure and safe for concurrent use.
package scoring

import "propertycrm/server/internal/models"

const (
	// Leads start at baseLeadScore and earn bands on top of it.
	baseLeadScore = 50
	maxLeadScore  = 100
)

// LeadScore rates a lead's quality from its budget ceiling, buying
// timeline and buyer segment. The result is in [0, 100].
//
// The score is a cache of these three inputs; callers must recompute it
// whenever any of them changes.
func LeadScore(budgetMax *float64, timeline models.Timeline, buyerType models.BuyerType) int {
	score := baseLeadScore + budgetBand(budgetMax) + timelineBand(timeline) + buyerTypeBand(buyerType)
	if score > maxLeadScore {
		return maxLeadScore
	}
	return score
}

// budgetBand uses strict thresholds: a budget of exactly 200,000 lands in
// the 10 point band.
func budgetBand(budgetMax *float64) int {
	if budgetMax == nil {
		return 0
	}
	switch b := *budgetMax; {
	case b > 500_000:
		return 30
	case b > 200_000:
		return 20
	case b > 100_000:
		return 10
	default:
		return 0
	}
}

func timelineBand(t models.Timeline) int {
	switch t {
	case models.TimelineImmediate:
		return 25
	case models.TimelineOneToThreeMonths:
		return 15
	case models.TimelineThreeToSixMonths:
		return 10
	case models.TimelineSixToTwelveMonths:
		return 5
	default:
		return 0
	}
}

func buyerTypeBand(b models.BuyerType) int {
	switch b {
	case models.BuyerTypeHNI:
		return 20
	case models.BuyerTypeInvestor:
		return 15
	case models.BuyerTypeCommercial:
		return 10
	default:
		return 0
	}
}
