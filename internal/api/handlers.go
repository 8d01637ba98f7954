package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertycrm/server/internal/apperr"
	"propertycrm/server/internal/leads"
	"propertycrm/server/internal/models"
	"propertycrm/server/internal/recommendation"
	"propertycrm/server/internal/scoring"
)

const (
	defaultRecommendationLimit = 20
	maxRecommendationLimit     = 100
)

type PropertyStore interface {
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, p *models.Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (models.Property, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	ListPropertiesByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error)
	IncrementEngagement(ctx context.Context, id uuid.UUID, kind models.EngagementKind) (models.Property, error)
	Ping() error
}

// Enqueuer accepts customer ids for background regeneration.
type Enqueuer interface {
	PushChunked(ids []uuid.UUID, size int) error
}

// BatchRunner runs a full regeneration across all customers.
type BatchRunner interface {
	RunNow(ctx context.Context) (recommendation.BatchResult, error)
}

type Dependencies struct {
	Properties      PropertyStore
	Leads           *leads.Service
	Recommendations *recommendation.Manager
	Queue           Enqueuer
	BatchRunner     BatchRunner
	// BatchSize bounds the number of customers per queued batch.
	BatchSize int
}

type Handler struct {
	properties      PropertyStore
	leads           *leads.Service
	recommendations *recommendation.Manager
	queue           Enqueuer
	batchRunner     BatchRunner
	batchSize       int
	logger          *logrus.Logger
}

func NewHandler(deps Dependencies, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		properties:      deps.Properties,
		leads:           deps.Leads,
		recommendations: deps.Recommendations,
		queue:           deps.Queue,
		batchRunner:     deps.BatchRunner,
		batchSize:       deps.BatchSize,
		logger:          logger,
	}
}

// respondError writes err as JSON with the status its kind maps to.
// Server-side failures are logged and their details withheld.
func (h *Handler) respondError(c *gin.Context, err error, message string) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(status, gin.H{"error": message})
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	c.JSON(status, gin.H{"error": message})
}

func (h *Handler) bindError(c *gin.Context, err error) {
	h.logger.WithError(err).Debug("Invalid request body")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.properties.Ping(); err != nil {
		h.logger.WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Leads

func (h *Handler) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err, "Failed to create lead")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *Handler) ListLeads(c *gin.Context) {
	var statuses []models.LeadStatus
	if raw := c.Query("status"); raw != "" {
		s, err := models.ParseLeadStatus(raw)
		if err != nil {
			h.respondError(c, err, "Invalid status")
			return
		}
		statuses = append(statuses, s)
	}

	list, err := h.leads.List(c.Request.Context(), statuses...)
	if err != nil {
		h.respondError(c, err, "Failed to get leads")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetLead(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	lead, err := h.leads.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get lead")
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	lead, err := h.leads.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.respondError(c, err, "Failed to update lead")
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *Handler) GetLeadSuggestions(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	suggestions, err := h.recommendations.SuggestProperties(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to suggest properties")
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// Properties

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	var p models.Property
	req.apply(&p)
	if err := h.properties.CreateProperty(c.Request.Context(), &p); err != nil {
		h.respondError(c, err, "Failed to create property")
		return
	}

	h.enqueueRegeneration(c.Request.Context())
	c.JSON(http.StatusCreated, p)
}

// ListProperties returns properties ordered by market interest.
func (h *Handler) ListProperties(c *gin.Context) {
	var (
		list []models.Property
		err  error
	)
	if raw := c.Query("status"); raw != "" {
		status, perr := models.ParsePropertyStatus(raw)
		if perr != nil {
			h.respondError(c, perr, "Invalid status")
			return
		}
		list, err = h.properties.ListPropertiesByStatus(c.Request.Context(), status)
	} else {
		list, err = h.properties.ListProperties(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err, "Failed to get properties")
		return
	}

	scoring.SortByInterest(list)
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.properties.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get property")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.properties.GetProperty(ctx, id)
	if err != nil {
		h.respondError(c, err, "Failed to get property")
		return
	}
	req.apply(&p)
	if err := h.properties.UpdateProperty(ctx, &p); err != nil {
		h.respondError(c, err, "Failed to update property")
		return
	}

	h.enqueueRegeneration(ctx)
	c.JSON(http.StatusOK, p)
}

func (h *Handler) RecordEngagement(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req EngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	kind, _ := models.ParseEngagementKind(req.Kind)

	p, err := h.properties.IncrementEngagement(c.Request.Context(), id, kind)
	if err != nil {
		h.respondError(c, err, "Failed to record engagement")
		return
	}
	c.JSON(http.StatusOK, scoring.Performance(p))
}

func (h *Handler) GetPropertyPerformance(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.properties.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get property")
		return
	}
	c.JSON(http.StatusOK, scoring.Performance(p))
}

func (h *Handler) GetPropertyDemand(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	demand, err := h.recommendations.PropertyDemand(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to aggregate demand")
		return
	}
	c.JSON(http.StatusOK, demand)
}

// enqueueRegeneration schedules every profiled customer for regeneration
// after the inventory changed. Failures are logged; the nightly run
// catches up on anything missed.
func (h *Handler) enqueueRegeneration(ctx context.Context) {
	ids, err := h.recommendations.ProfiledCustomers(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to list customers for regeneration")
		return
	}
	if err := h.queue.PushChunked(ids, h.batchSize); err != nil {
		h.logger.WithError(err).WithField("customers", len(ids)).Warn("Failed to enqueue regeneration")
	}
}

// Customers

func (h *Handler) GetPreferences(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	pref, err := h.recommendations.Preferences(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get preferences")
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (h *Handler) SavePreferences(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	profile := req.toProfile(id)
	res, err := h.recommendations.SavePreferences(c.Request.Context(), id, profile)
	if err != nil {
		h.respondError(c, err, "Failed to save preferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preferences":     profile,
		"recommendations": res.Recommendations,
	})
}

func (h *Handler) GetRecommendations(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	limit := defaultRecommendationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxRecommendationLimit)
	}

	recs, err := h.recommendations.Recommendations(c.Request.Context(), id, limit)
	if err != nil {
		h.respondError(c, err, "Failed to get recommendations")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) RegenerateAll(c *gin.Context) {
	res, err := h.batchRunner.RunNow(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to regenerate recommendations")
		return
	}
	c.JSON(http.StatusOK, res)
}
