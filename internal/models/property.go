package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Property struct {
	ID        uuid.UUID                   `json:"id" gorm:"type:text;primaryKey"`
	Title     string                      `json:"title"`
	Price     float64                     `json:"price" gorm:"index"`
	Type      PropertyType                `json:"type" gorm:"type:text;not null"`
	Location  string                      `json:"location"`
	Bedrooms  int                         `json:"bedrooms"`
	Bathrooms int                         `json:"bathrooms"`
	Amenities datatypes.JSONSlice[string] `json:"amenities"`
	Views     int64                       `json:"views"`
	Inquiries int64                       `json:"inquiries"`
	Tours     int64                       `json:"tours"`
	Offers    int64                       `json:"offers"`
	Status    PropertyStatus              `json:"status" gorm:"type:text;not null;index"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// PropertyPerformance is the derived market interest of a property.
type PropertyPerformance struct {
	PropertyID     uuid.UUID `json:"property_id"`
	Views          int64     `json:"views"`
	Inquiries      int64     `json:"inquiries"`
	Tours          int64     `json:"tours"`
	Offers         int64     `json:"offers"`
	InterestScore  float64   `json:"interest_score"`
	ConversionRate float64   `json:"conversion_rate"`
}

// PropertyDemand counts the in-market leads whose budget fits a property.
type PropertyDemand struct {
	PropertyID uuid.UUID `json:"property_id"`
	HNI        int       `json:"hni"`
	Investor   int       `json:"investor"`
	Commercial int       `json:"commercial"`
	Retail     int       `json:"retail"`
	Total      int       `json:"total"`
	MatchScore int       `json:"match_score"`
}
