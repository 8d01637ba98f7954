package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CustomerPreferenceProfile holds what a customer is looking for.
// There is at most one profile per customer.
type CustomerPreferenceProfile struct {
	CustomerID    uuid.UUID                         `json:"customer_id" gorm:"type:text;primaryKey"`
	PropertyTypes datatypes.JSONSlice[PropertyType] `json:"property_types"`
	Locations     datatypes.JSONSlice[string]       `json:"locations"`
	BudgetMin     *float64                          `json:"budget_min"`
	BudgetMax     *float64                          `json:"budget_max"`
	Bedrooms      *int                              `json:"bedrooms"`
	Bathrooms     *int                              `json:"bathrooms"`
	Amenities     datatypes.JSONSlice[string]       `json:"amenities"`
	Timeline      *Timeline                         `json:"timeline" gorm:"type:text"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
}

// Recommendation is a persisted property suggestion for a customer.
type Recommendation struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:text;primaryKey"`
	CustomerID      uuid.UUID                   `json:"customer_id" gorm:"type:text;not null;uniqueIndex:idx_recommendation_customer_property"`
	PropertyID      uuid.UUID                   `json:"property_id" gorm:"type:text;not null;uniqueIndex:idx_recommendation_customer_property"`
	ConfidenceScore int                         `json:"confidence_score"`
	MatchReasons    datatypes.JSONSlice[string] `json:"match_reasons"`
	Status          RecommendationStatus        `json:"status" gorm:"type:text;not null;index"`
	CreatedAt       time.Time                   `json:"created_at"`
}
