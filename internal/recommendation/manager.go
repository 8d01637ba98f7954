// Package recommendation keeps each customer's persisted recommendations in
// step with their preference profile and the available inventory, and
// serves the on-demand lead/property matching views.
package recommendation

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"propertycrm/server/internal/apperr"
	"propertycrm/server/internal/matching"
	"propertycrm/server/internal/models"
)

type Store interface {
	GetPreferenceProfile(ctx context.Context, customerID uuid.UUID) (models.CustomerPreferenceProfile, error)
	UpsertPreferenceProfile(ctx context.Context, pref *models.CustomerPreferenceProfile) error
	ListProfileCustomerIDs(ctx context.Context) ([]uuid.UUID, error)
	GetProperty(ctx context.Context, id uuid.UUID) (models.Property, error)
	ListPropertiesByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error)
	GetLead(ctx context.Context, id uuid.UUID) (models.Lead, error)
	ListLeadsByStatus(ctx context.Context, statuses ...models.LeadStatus) ([]models.Lead, error)
	ReplaceActiveRecommendations(ctx context.Context, customerID uuid.UUID, recs []models.Recommendation) error
	QueryByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Recommendation, error)
}

// Options tune batch regeneration.
type Options struct {
	// Workers bounds how many customers are regenerated at once.
	Workers int
	// RateLimit is the number of regenerations started per second; <= 0 disables throttling.
	RateLimit float64
	RateBurst int
}

// Result describes one customer's regenerated recommendation set.
type Result struct {
	CustomerID      uuid.UUID               `json:"customer_id"`
	Evaluated       int                     `json:"evaluated"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// BatchResult summarizes a RegenerateAll run.
type BatchResult struct {
	Customers int           `json:"customers"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

type Manager struct {
	store   Store
	engine  *matching.Engine
	logger  *logrus.Logger
	locks   *keyedMutex
	workers int
	limiter *rate.Limiter
}

func NewManager(store Store, engine *matching.Engine, opts Options, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}

	return &Manager{
		store:   store,
		engine:  engine,
		logger:  logger,
		locks:   newKeyedMutex(),
		workers: opts.Workers,
		limiter: rate.NewLimiter(limit, opts.RateBurst),
	}
}

// Regenerate rebuilds the customer's active recommendations from their
// profile and the currently available properties. The new set replaces
// the old one atomically; on failure the old set stays in place.
func (m *Manager) Regenerate(ctx context.Context, customerID uuid.UUID) (Result, error) {
	unlock := m.locks.lock(customerID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, apperr.RegenerationFailed("regeneration cancelled", err)
	}

	profile, err := m.store.GetPreferenceProfile(ctx, customerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Result{}, apperr.NotFound("customer has no preference profile")
		}
		return Result{}, apperr.RegenerationFailed("failed to load preference profile", err)
	}

	properties, err := m.store.ListPropertiesByStatus(ctx, models.PropertyStatusAvailable)
	if err != nil {
		return Result{}, apperr.RegenerationFailed("failed to load available properties", err)
	}

	recs := m.score(profile, properties)
	if err := m.store.ReplaceActiveRecommendations(ctx, customerID, recs); err != nil {
		return Result{}, apperr.RegenerationFailed("failed to persist recommendations", err)
	}

	m.logger.WithFields(logrus.Fields{
		"customer_id":     customerID,
		"evaluated":       len(properties),
		"recommendations": len(recs),
	}).Debug("Recommendations regenerated")

	return Result{CustomerID: customerID, Evaluated: len(properties), Recommendations: recs}, nil
}

// score keeps the properties that reach the threshold, best first.
func (m *Manager) score(profile models.CustomerPreferenceProfile, properties []models.Property) []models.Recommendation {
	now := time.Now()
	recs := make([]models.Recommendation, 0)
	for _, p := range properties {
		score, reasons := m.engine.MatchPreference(p, profile)
		if !m.engine.Qualifies(score) {
			continue
		}
		recs = append(recs, models.Recommendation{
			ID:              uuid.New(),
			CustomerID:      profile.CustomerID,
			PropertyID:      p.ID,
			ConfidenceScore: score,
			MatchReasons:    reasons,
			Status:          models.RecommendationStatusActive,
			CreatedAt:       now,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ConfidenceScore != recs[j].ConfidenceScore {
			return recs[i].ConfidenceScore > recs[j].ConfidenceScore
		}
		return recs[i].PropertyID.String() < recs[j].PropertyID.String()
	})
	return recs
}

// SavePreferences stores the customer's profile, creating it on first use,
// and regenerates their recommendations against it.
func (m *Manager) SavePreferences(ctx context.Context, customerID uuid.UUID, profile models.CustomerPreferenceProfile) (Result, error) {
	if customerID == uuid.Nil {
		return Result{}, apperr.Validation("customer id is required")
	}
	profile.CustomerID = customerID
	if err := validateProfile(profile); err != nil {
		return Result{}, err
	}

	if err := m.store.UpsertPreferenceProfile(ctx, &profile); err != nil {
		return Result{}, apperr.Internal("failed to save preferences", err)
	}
	return m.Regenerate(ctx, customerID)
}

func (m *Manager) Preferences(ctx context.Context, customerID uuid.UUID) (models.CustomerPreferenceProfile, error) {
	return m.store.GetPreferenceProfile(ctx, customerID)
}

// Recommendations returns the customer's persisted set, most confident first.
func (m *Manager) Recommendations(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Recommendation, error) {
	if limit < 0 {
		return nil, apperr.Validation("limit must not be negative")
	}
	recs, err := m.store.QueryByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to query recommendations", err)
	}
	return recs, nil
}

// ProfiledCustomers lists every customer with a preference profile.
func (m *Manager) ProfiledCustomers(ctx context.Context) ([]uuid.UUID, error) {
	return m.store.ListProfileCustomerIDs(ctx)
}

// RegenerateAll regenerates every profiled customer on a bounded, rate
// limited worker pool. A failing customer is counted and logged; it does
// not stop the run.
func (m *Manager) RegenerateAll(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	ids, err := m.store.ListProfileCustomerIDs(ctx)
	if err != nil {
		return BatchResult{}, apperr.RegenerationFailed("failed to list customers", err)
	}

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(m.workers)

	var waitErr error
	for _, id := range ids {
		id := id
		if err := m.limiter.Wait(ctx); err != nil {
			waitErr = err
			break
		}
		g.Go(func() error {
			if _, err := m.Regenerate(ctx, id); err != nil {
				failed.Add(1)
				m.logger.WithError(err).WithField("customer_id", id).Warn("Customer regeneration failed")
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{
		Customers: len(ids),
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
		Duration:  time.Since(start),
	}
	m.logger.WithFields(logrus.Fields{
		"customers": res.Customers,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
		"duration":  res.Duration.String(),
	}).Info("Batch regeneration finished")

	if waitErr != nil {
		return res, apperr.RegenerationFailed("batch regeneration interrupted", waitErr)
	}
	return res, nil
}

// SuggestProperties ranks available properties for a lead.
func (m *Manager) SuggestProperties(ctx context.Context, leadID uuid.UUID) ([]models.LeadPropertySuggestion, error) {
	lead, err := m.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	properties, err := m.store.ListPropertiesByStatus(ctx, models.PropertyStatusAvailable)
	if err != nil {
		return nil, apperr.Internal("failed to load available properties", err)
	}
	return m.engine.SuggestProperties(lead, properties), nil
}

// PropertyDemand aggregates in-market leads whose budget fits the property.
func (m *Manager) PropertyDemand(ctx context.Context, propertyID uuid.UUID) (models.PropertyDemand, error) {
	property, err := m.store.GetProperty(ctx, propertyID)
	if err != nil {
		return models.PropertyDemand{}, err
	}
	leads, err := m.store.ListLeadsByStatus(ctx, models.InMarketLeadStatuses()...)
	if err != nil {
		return models.PropertyDemand{}, apperr.Internal("failed to load leads", err)
	}
	return m.engine.AggregateDemand(property, leads), nil
}

func validateProfile(p models.CustomerPreferenceProfile) error {
	for _, t := range p.PropertyTypes {
		if !t.Valid() {
			return apperr.Validationf("unknown property type %q", t)
		}
	}
	if p.Timeline != nil && !p.Timeline.Valid() {
		return apperr.Validationf("unknown timeline %q", *p.Timeline)
	}
	if p.BudgetMin != nil && *p.BudgetMin < 0 {
		return apperr.Validation("budget_min must not be negative")
	}
	if p.BudgetMax != nil && *p.BudgetMax < 0 {
		return apperr.Validation("budget_max must not be negative")
	}
	if p.BudgetMin != nil && p.BudgetMax != nil && *p.BudgetMin > *p.BudgetMax {
		return apperr.Validation("budget_min must not exceed budget_max")
	}
	if p.Bedrooms != nil && *p.Bedrooms < 0 {
		return apperr.Validation("bedrooms must not be negative")
	}
	if p.Bathrooms != nil && *p.Bathrooms < 0 {
		return apperr.Validation("bathrooms must not be negative")
	}
	return nil
}

func (r BatchResult) String() string {
	return fmt.Sprintf("%d/%d customers regenerated (%d failed) in %s", r.Succeeded, r.Customers, r.Failed, r.Duration)
}
