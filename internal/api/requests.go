package api

import (
	"github.com/google/uuid"

	"propertycrm/server/internal/leads"
	"propertycrm/server/internal/models"
)

// Enum fields are validated by binding tags, so the Parse calls below
// cannot fail on a bound request.

type CreateLeadRequest struct {
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"omitempty,email"`
	Phone     string   `json:"phone"`
	BudgetMin *float64 `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax *float64 `json:"budget_max" binding:"omitempty,gte=0"`
	Timeline  string   `json:"timeline" binding:"required,timeline"`
	BuyerType string   `json:"buyer_type" binding:"required,buyer_type"`
	Status    string   `json:"status" binding:"omitempty,lead_status"`
}

func (r CreateLeadRequest) toInput() leads.CreateInput {
	in := leads.CreateInput{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BudgetMin: r.BudgetMin,
		BudgetMax: r.BudgetMax,
	}
	in.Timeline, _ = models.ParseTimeline(r.Timeline)
	in.BuyerType, _ = models.ParseBuyerType(r.BuyerType)
	if r.Status != "" {
		in.Status, _ = models.ParseLeadStatus(r.Status)
	}
	return in
}

type UpdateLeadRequest struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email" binding:"omitempty,email"`
	Phone     *string  `json:"phone"`
	BudgetMin *float64 `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax *float64 `json:"budget_max" binding:"omitempty,gte=0"`
	Timeline  *string  `json:"timeline" binding:"omitempty,timeline"`
	BuyerType *string  `json:"buyer_type" binding:"omitempty,buyer_type"`
	Status    *string  `json:"status" binding:"omitempty,lead_status"`
}

func (r UpdateLeadRequest) toInput() leads.UpdateInput {
	in := leads.UpdateInput{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BudgetMin: r.BudgetMin,
		BudgetMax: r.BudgetMax,
	}
	if r.Timeline != nil {
		t, _ := models.ParseTimeline(*r.Timeline)
		in.Timeline = &t
	}
	if r.BuyerType != nil {
		b, _ := models.ParseBuyerType(*r.BuyerType)
		in.BuyerType = &b
	}
	if r.Status != nil {
		s, _ := models.ParseLeadStatus(*r.Status)
		in.Status = &s
	}
	return in
}

// PropertyRequest is used for both create and full update. Engagement
// counters are not writable here.
type PropertyRequest struct {
	Title     string   `json:"title" binding:"required"`
	Price     float64  `json:"price" binding:"gte=0"`
	Type      string   `json:"type" binding:"required,property_type"`
	Location  string   `json:"location"`
	Bedrooms  int      `json:"bedrooms" binding:"gte=0"`
	Bathrooms int      `json:"bathrooms" binding:"gte=0"`
	Amenities []string `json:"amenities"`
	Status    string   `json:"status" binding:"omitempty,property_status"`
}

func (r PropertyRequest) apply(p *models.Property) {
	p.Title = r.Title
	p.Price = r.Price
	p.Type, _ = models.ParsePropertyType(r.Type)
	p.Location = r.Location
	p.Bedrooms = r.Bedrooms
	p.Bathrooms = r.Bathrooms
	p.Amenities = r.Amenities
	if r.Status != "" {
		p.Status, _ = models.ParsePropertyStatus(r.Status)
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusAvailable
	}
}

type EngagementRequest struct {
	Kind string `json:"kind" binding:"required,engagement_kind"`
}

type PreferencesRequest struct {
	PropertyTypes []string `json:"property_types" binding:"omitempty,dive,property_type"`
	Locations     []string `json:"locations"`
	BudgetMin     *float64 `json:"budget_min" binding:"omitempty,gte=0"`
	BudgetMax     *float64 `json:"budget_max" binding:"omitempty,gte=0"`
	Bedrooms      *int     `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms     *int     `json:"bathrooms" binding:"omitempty,gte=0"`
	Amenities     []string `json:"amenities"`
	Timeline      *string  `json:"timeline" binding:"omitempty,timeline"`
}

func (r PreferencesRequest) toProfile(customerID uuid.UUID) models.CustomerPreferenceProfile {
	p := models.CustomerPreferenceProfile{
		CustomerID: customerID,
		Locations:  r.Locations,
		BudgetMin:  r.BudgetMin,
		BudgetMax:  r.BudgetMax,
		Bedrooms:   r.Bedrooms,
		Bathrooms:  r.Bathrooms,
		Amenities:  r.Amenities,
	}
	for _, raw := range r.PropertyTypes {
		t, _ := models.ParsePropertyType(raw)
		p.PropertyTypes = append(p.PropertyTypes, t)
	}
	if r.Timeline != nil {
		t, _ := models.ParseTimeline(*r.Timeline)
		p.Timeline = &t
	}
	return p
}
