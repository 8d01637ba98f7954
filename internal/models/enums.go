package models

import (
	"strings"

	"propertycrm/server/internal/apperr"
)

// Timeline is how soon a buyer intends to purchase.
type Timeline string

const (
	TimelineImmediate         Timeline = "Immediate"
	TimelineOneToThreeMonths  Timeline = "OneToThreeMonths"
	TimelineThreeToSixMonths  Timeline = "ThreeToSixMonths"
	TimelineSixToTwelveMonths Timeline = "SixToTwelveMonths"
	TimelineFlexible          Timeline = "Flexible"
)

// BuyerType is the commercial segment of a lead.
type BuyerType string

const (
	BuyerTypeHNI        BuyerType = "HNI"
	BuyerTypeInvestor   BuyerType = "Investor"
	BuyerTypeCommercial BuyerType = "Commercial"
	BuyerTypeRetail     BuyerType = "Retail"
)

// PropertyType is the listing category of a property.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "Apartment"
	PropertyTypeHouse      PropertyType = "House"
	PropertyTypeVilla      PropertyType = "Villa"
	PropertyTypeTownhouse  PropertyType = "Townhouse"
	PropertyTypePlot       PropertyType = "Plot"
	PropertyTypeCommercial PropertyType = "Commercial"
	PropertyTypeInvestment PropertyType = "Investment"
)

// PropertyStatus is the sales availability of a property.
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "Available"
	PropertyStatusReserved  PropertyStatus = "Reserved"
	PropertyStatusSold      PropertyStatus = "Sold"
	PropertyStatusOffMarket PropertyStatus = "OffMarket"
)

// LeadStatus is the pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "New"
	LeadStatusContacted   LeadStatus = "Contacted"
	LeadStatusQualified   LeadStatus = "Qualified"
	LeadStatusViewing     LeadStatus = "Viewing"
	LeadStatusNegotiating LeadStatus = "Negotiating"
	LeadStatusConverted   LeadStatus = "Converted"
	LeadStatusLost        LeadStatus = "Lost"
)

// RecommendationStatus is the state of a persisted recommendation.
// Active is the only state a recommendation can be in; replaced
// recommendations are deleted rather than moved to another state.
type RecommendationStatus string

const RecommendationStatusActive RecommendationStatus = "Active"

// EngagementKind names one of the property engagement counters.
type EngagementKind string

const (
	EngagementView    EngagementKind = "view"
	EngagementInquiry EngagementKind = "inquiry"
	EngagementTour    EngagementKind = "tour"
	EngagementOffer   EngagementKind = "offer"
)

var (
	timelines = []Timeline{
		TimelineImmediate, TimelineOneToThreeMonths, TimelineThreeToSixMonths,
		TimelineSixToTwelveMonths, TimelineFlexible,
	}
	buyerTypes = []BuyerType{
		BuyerTypeHNI, BuyerTypeInvestor, BuyerTypeCommercial, BuyerTypeRetail,
	}
	propertyTypes = []PropertyType{
		PropertyTypeApartment, PropertyTypeHouse, PropertyTypeVilla, PropertyTypeTownhouse,
		PropertyTypePlot, PropertyTypeCommercial, PropertyTypeInvestment,
	}
	propertyStatuses = []PropertyStatus{
		PropertyStatusAvailable, PropertyStatusReserved, PropertyStatusSold, PropertyStatusOffMarket,
	}
	leadStatuses = []LeadStatus{
		LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusViewing,
		LeadStatusNegotiating, LeadStatusConverted, LeadStatusLost,
	}
	engagementKinds = []EngagementKind{
		EngagementView, EngagementInquiry, EngagementTour, EngagementOffer,
	}
)

// parseEnum matches raw case-insensitively against a closed set and
// returns the canonical value.
func parseEnum[T ~string](field, raw string, values []T) (T, error) {
	trimmed := strings.TrimSpace(raw)
	for _, v := range values {
		if strings.EqualFold(string(v), trimmed) {
			return v, nil
		}
	}
	var zero T
	return zero, apperr.Validationf("unknown %s %q", field, raw)
}

func isKnown[T ~string](v T, values []T) bool {
	for _, known := range values {
		if v == known {
			return true
		}
	}
	return false
}

func ParseTimeline(s string) (Timeline, error) { return parseEnum("timeline", s, timelines) }

func ParseBuyerType(s string) (BuyerType, error) { return parseEnum("buyer type", s, buyerTypes) }

func ParsePropertyType(s string) (PropertyType, error) {
	return parseEnum("property type", s, propertyTypes)
}

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	return parseEnum("property status", s, propertyStatuses)
}

func ParseLeadStatus(s string) (LeadStatus, error) { return parseEnum("lead status", s, leadStatuses) }

func ParseEngagementKind(s string) (EngagementKind, error) {
	return parseEnum("engagement kind", s, engagementKinds)
}

func (t Timeline) Valid() bool       { return isKnown(t, timelines) }
func (b BuyerType) Valid() bool      { return isKnown(b, buyerTypes) }
func (p PropertyType) Valid() bool   { return isKnown(p, propertyTypes) }
func (s PropertyStatus) Valid() bool { return isKnown(s, propertyStatuses) }
func (s LeadStatus) Valid() bool     { return isKnown(s, leadStatuses) }
func (k EngagementKind) Valid() bool { return isKnown(k, engagementKinds) }

// InMarket reports whether a lead at this stage is still actively buying.
// Negotiating, Converted and Lost leads are committed elsewhere or gone.
func (s LeadStatus) InMarket() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusViewing:
		return true
	default:
		return false
	}
}

// InMarketLeadStatuses lists the stages for which InMarket is true.
func InMarketLeadStatuses() []LeadStatus {
	return []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusViewing}
}
