package models

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective buyer in the sales pipeline.
// Score is derived from budget, timeline and buyer type and is
// only ever written by the lead service.
type Lead struct {
	ID        uuid.UUID  `json:"id" gorm:"type:text;primaryKey"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BudgetMin *float64   `json:"budget_min"`
	BudgetMax *float64   `json:"budget_max"`
	Timeline  Timeline   `json:"timeline" gorm:"type:text;not null"`
	BuyerType BuyerType  `json:"buyer_type" gorm:"type:text;not null"`
	Score     int        `json:"score" gorm:"index"`
	Status    LeadStatus `json:"status" gorm:"type:text;not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LeadPropertySuggestion is a candidate property for a lead, computed on demand.
type LeadPropertySuggestion struct {
	Property      Property `json:"property"`
	MatchScore    float64  `json:"match_score"`
	InterestScore float64  `json:"interest_score"`
	Reasons       []string `json:"reasons"`
}
