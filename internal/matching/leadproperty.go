package matching

import (
	"math"

	"propertycrm/server/internal/models"
	"propertycrm/server/internal/scoring"
)

// Reasons attached to a lead/property match.
const (
	ReasonExactBudget     = "Within the lead's budget range"
	ReasonNearBudget      = "Slightly above budget (within 10%)"
	ReasonStretchBudget   = "Within a 20% budget stretch"
	ReasonHNIPremium      = "Premium property suited to a high-net-worth buyer"
	ReasonInvestorFit     = "Investment property for an investor"
	ReasonCommercialFit   = "Commercial property for a commercial buyer"
	ReasonHighDemand      = "High demand: multiple offers received"
	ReasonGeneralCriteria = "Matches the lead's general criteria"
)

const (
	maxLeadSuggestions     = 5
	maxLeadPropertyScore   = 100.0
	hniPremiumPriceFloor   = 500_000.0
	highDemandOfferCount   = 5
	performanceBonusFactor = 10.0
)

// Budget flexibility multipliers. Demand aggregation and candidate
// selection apply them in opposite directions and are kept separate.
const (
	demandBudgetMaxFactor  = 0.8
	demandBudgetMinFactor  = 1.2
	candidateLowerFactor   = 0.8
	candidateUpperFactor   = 1.2
	budgetFitNearFactor    = 1.1
	budgetFitStretchFactor = 1.2
)

// withinDemandBand reports whether a lead's budget overlaps a property
// price: the ceiling reaches 80% of the price and the floor does not
// exceed 120% of it. A lead missing either bound does not match.
func withinDemandBand(lead models.Lead, price float64) bool {
	if lead.BudgetMin == nil || lead.BudgetMax == nil {
		return false
	}
	return *lead.BudgetMax >= price*demandBudgetMaxFactor && *lead.BudgetMin <= price*demandBudgetMinFactor
}

// MatchesPropertyDemand reports whether lead counts as demand for p.
func MatchesPropertyDemand(lead models.Lead, p models.Property) bool {
	return lead.Status.InMarket() && withinDemandBand(lead, p.Price)
}

// AggregateDemand counts in-market leads whose budget fits p and weights
// them by buyer segment.
func (e *Engine) AggregateDemand(p models.Property, leads []models.Lead) models.PropertyDemand {
	d := models.PropertyDemand{PropertyID: p.ID}
	for _, lead := range leads {
		if !MatchesPropertyDemand(lead, p) {
			continue
		}
		d.Total++
		switch lead.BuyerType {
		case models.BuyerTypeHNI:
			d.HNI++
		case models.BuyerTypeInvestor:
			d.Investor++
		case models.BuyerTypeCommercial:
			d.Commercial++
		default:
			d.Retail++
		}
	}
	w := e.weights.Demand
	d.MatchScore = d.HNI*w.HNI + d.Investor*w.Investor + d.Retail*w.Retail
	return d
}

// leadBudget returns the lead's budget bounds with 0 and +Inf standing in
// for missing values.
func leadBudget(lead models.Lead) (float64, float64) {
	lo, hi := 0.0, math.Inf(1)
	if lead.BudgetMin != nil {
		lo = *lead.BudgetMin
	}
	if lead.BudgetMax != nil {
		hi = *lead.BudgetMax
	}
	return lo, hi
}

// withinCandidateBand widens the lead's budget by 20% on both sides.
func withinCandidateBand(lead models.Lead, price float64) bool {
	lo, hi := leadBudget(lead)
	return price >= lo*candidateLowerFactor && price <= hi*candidateUpperFactor
}

// CandidateProperties returns up to five available properties in the
// lead's widened budget band, most engaged first.
func CandidateProperties(lead models.Lead, properties []models.Property) []models.Property {
	var out []models.Property
	for _, p := range properties {
		if p.Status != models.PropertyStatusAvailable {
			continue
		}
		if !withinCandidateBand(lead, p.Price) {
			continue
		}
		out = append(out, p)
	}
	scoring.SortByInterest(out)
	if len(out) > maxLeadSuggestions {
		out = out[:maxLeadSuggestions]
	}
	return out
}

type budgetFitLevel int

const (
	budgetFitNone budgetFitLevel = iota
	budgetFitStretch
	budgetFitNear
	budgetFitExact
)

func budgetFit(lead models.Lead, price float64) budgetFitLevel {
	lo, hi := leadBudget(lead)
	switch {
	case price >= lo && price <= hi:
		return budgetFitExact
	case price <= hi*budgetFitNearFactor:
		return budgetFitNear
	case price <= hi*budgetFitStretchFactor:
		return budgetFitStretch
	default:
		return budgetFitNone
	}
}

func (e *Engine) budgetFitPoints(level budgetFitLevel) int {
	w := e.weights.LeadProperty
	switch level {
	case budgetFitExact:
		return w.ExactBudget
	case budgetFitNear:
		return w.NearBudget
	case budgetFitStretch:
		return w.StretchBudget
	default:
		return 0
	}
}

// strongAffinity reports whether the property is the kind of deal the
// lead's segment is after.
func strongAffinity(lead models.Lead, p models.Property) bool {
	switch lead.BuyerType {
	case models.BuyerTypeHNI:
		return p.Price > hniPremiumPriceFloor
	case models.BuyerTypeInvestor:
		return p.Type == models.PropertyTypeInvestment
	case models.BuyerTypeCommercial:
		return p.Type == models.PropertyTypeCommercial
	default:
		return false
	}
}

// MatchLeadProperty scores p for lead from budget fit, market
// performance and buyer-segment affinity. The result is in [0, 100].
func (e *Engine) MatchLeadProperty(lead models.Lead, p models.Property) (float64, []string) {
	w := e.weights.LeadProperty
	fit := budgetFit(lead, p.Price)
	affinity := strongAffinity(lead, p)

	score := float64(e.budgetFitPoints(fit))
	score += math.Min(w.PerformanceCap, scoring.PropertyInterest(p)/performanceBonusFactor)
	if affinity {
		score += float64(w.StrongAffinity)
	} else {
		score += float64(w.BaseAffinity)
	}
	score = math.Min(score, maxLeadPropertyScore)

	return score, leadPropertyReasons(lead, p, fit, affinity)
}

func leadPropertyReasons(lead models.Lead, p models.Property, fit budgetFitLevel, affinity bool) []string {
	var reasons []string
	switch fit {
	case budgetFitExact:
		reasons = append(reasons, ReasonExactBudget)
	case budgetFitNear:
		reasons = append(reasons, ReasonNearBudget)
	case budgetFitStretch:
		reasons = append(reasons, ReasonStretchBudget)
	}
	if affinity {
		switch lead.BuyerType {
		case models.BuyerTypeHNI:
			reasons = append(reasons, ReasonHNIPremium)
		case models.BuyerTypeInvestor:
			reasons = append(reasons, ReasonInvestorFit)
		case models.BuyerTypeCommercial:
			reasons = append(reasons, ReasonCommercialFit)
		}
	}
	if p.Offers > highDemandOfferCount {
		reasons = append(reasons, ReasonHighDemand)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralCriteria)
	}
	return reasons
}

// SuggestProperties picks the candidate properties for lead and scores each.
func (e *Engine) SuggestProperties(lead models.Lead, properties []models.Property) []models.LeadPropertySuggestion {
	candidates := CandidateProperties(lead, properties)
	out := make([]models.LeadPropertySuggestion, 0, len(candidates))
	for _, p := range candidates {
		score, reasons := e.MatchLeadProperty(lead, p)
		out = append(out, models.LeadPropertySuggestion{
			Property:      p,
			MatchScore:    score,
			InterestScore: scoring.PropertyInterest(p),
			Reasons:       reasons,
		})
	}
	return out
}
