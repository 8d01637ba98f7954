package scoring

import (
	"sort"

	"propertycrm/server/internal/models"
)

// Engagement weights grow with buyer commitment: a view costs nothing,
// an offer is close to a sale.
const (
	viewWeight    = 0.1
	inquiryWeight = 2.0
	tourWeight    = 5.0
	offerWeight   = 10.0
)

// InterestScore is the weighted sum of a property's engagement counters.
func InterestScore(views, inquiries, tours, offers int64) float64 {
	return viewWeight*float64(views) +
		inquiryWeight*float64(inquiries) +
		tourWeight*float64(tours) +
		offerWeight*float64(offers)
}

// ConversionRate is offers per inquiry as a percentage. It is 0 when
// there are no inquiries.
func ConversionRate(offers, inquiries int64) float64 {
	if inquiries == 0 {
		return 0
	}
	return float64(offers) / float64(inquiries) * 100
}

// PropertyInterest returns the interest score of p.
func PropertyInterest(p models.Property) float64 {
	return InterestScore(p.Views, p.Inquiries, p.Tours, p.Offers)
}

// Performance summarises the engagement of p.
func Performance(p models.Property) models.PropertyPerformance {
	return models.PropertyPerformance{
		PropertyID:     p.ID,
		Views:          p.Views,
		Inquiries:      p.Inquiries,
		Tours:          p.Tours,
		Offers:         p.Offers,
		InterestScore:  PropertyInterest(p),
		ConversionRate: ConversionRate(p.Offers, p.Inquiries),
	}
}

// SortByInterest orders properties by interest score, highest first.
// Ties are broken by id so the order is deterministic.
func SortByInterest(properties []models.Property) {
	sort.SliceStable(properties, func(i, j int) bool {
		si, sj := PropertyInterest(properties[i]), PropertyInterest(properties[j])
		if si != sj {
			return si > sj
		}
		return properties[i].ID.String() < properties[j].ID.String()
	})
}
