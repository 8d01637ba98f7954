// Package leads owns lead writes. Every write path recomputes the cached
// lead score so it never drifts from the lead's budget, timeline and
// buyer type.
package leads

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertycrm/server/internal/apperr"
	"propertycrm/server/internal/models"
	"propertycrm/server/internal/scoring"
)

type Store interface {
	CreateLead(ctx context.Context, lead *models.Lead) error
	UpdateLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (models.Lead, error)
	ListLeads(ctx context.Context) ([]models.Lead, error)
	ListLeadsByStatus(ctx context.Context, statuses ...models.LeadStatus) ([]models.Lead, error)
}

// CreateInput carries the client-writable fields of a new lead.
// The score is not among them.
type CreateInput struct {
	Name      string
	Email     string
	Phone     string
	BudgetMin *float64
	BudgetMax *float64
	Timeline  models.Timeline
	BuyerType models.BuyerType
	Status    models.LeadStatus
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name      *string
	Email     *string
	Phone     *string
	BudgetMin *float64
	BudgetMax *float64
	Timeline  *models.Timeline
	BuyerType *models.BuyerType
	Status    *models.LeadStatus
}

type Service struct {
	store  Store
	logger *logrus.Logger
}

func NewService(store Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.Lead, error) {
	lead := models.Lead{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		BudgetMin: in.BudgetMin,
		BudgetMax: in.BudgetMax,
		Timeline:  in.Timeline,
		BuyerType: in.BuyerType,
		Status:    in.Status,
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if err := validate(lead); err != nil {
		return models.Lead{}, err
	}

	lead.Score = scoring.LeadScore(lead.BudgetMax, lead.Timeline, lead.BuyerType)
	if err := s.store.CreateLead(ctx, &lead); err != nil {
		return models.Lead{}, apperr.Internal("failed to create lead", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"score":   lead.Score,
	}).Info("Lead created")
	return lead, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (models.Lead, error) {
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return models.Lead{}, err
	}

	if in.Name != nil {
		lead.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		lead.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		lead.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.BudgetMin != nil {
		lead.BudgetMin = in.BudgetMin
	}
	if in.BudgetMax != nil {
		lead.BudgetMax = in.BudgetMax
	}
	if in.Timeline != nil {
		lead.Timeline = *in.Timeline
	}
	if in.BuyerType != nil {
		lead.BuyerType = *in.BuyerType
	}
	if in.Status != nil {
		lead.Status = *in.Status
	}
	if err := validate(lead); err != nil {
		return models.Lead{}, err
	}

	previous := lead.Score
	lead.Score = scoring.LeadScore(lead.BudgetMax, lead.Timeline, lead.BuyerType)
	if err := s.store.UpdateLead(ctx, &lead); err != nil {
		return models.Lead{}, err
	}

	if previous != lead.Score {
		s.logger.WithFields(logrus.Fields{
			"lead_id":  lead.ID,
			"previous": previous,
			"score":    lead.Score,
		}).Info("Lead score changed")
	}
	return lead, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Lead, error) {
	return s.store.GetLead(ctx, id)
}

// List returns leads best score first, optionally restricted to statuses.
func (s *Service) List(ctx context.Context, statuses ...models.LeadStatus) ([]models.Lead, error) {
	if len(statuses) == 0 {
		return s.store.ListLeads(ctx)
	}
	return s.store.ListLeadsByStatus(ctx, statuses...)
}

func validate(lead models.Lead) error {
	if !lead.Timeline.Valid() {
		return apperr.Validationf("unknown timeline %q", lead.Timeline)
	}
	if !lead.BuyerType.Valid() {
		return apperr.Validationf("unknown buyer type %q", lead.BuyerType)
	}
	if !lead.Status.Valid() {
		return apperr.Validationf("unknown lead status %q", lead.Status)
	}
	if lead.BudgetMin != nil && *lead.BudgetMin < 0 {
		return apperr.Validation("budget_min must not be negative")
	}
	if lead.BudgetMax != nil && *lead.BudgetMax < 0 {
		return apperr.Validation("budget_max must not be negative")
	}
	if lead.BudgetMin != nil && lead.BudgetMax != nil && *lead.BudgetMin > *lead.BudgetMax {
		return apperr.Validation("budget_min must not exceed budget_max")
	}
	return nil
}
