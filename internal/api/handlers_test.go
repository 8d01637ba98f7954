package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertycrm/server/internal/database"
	"propertycrm/server/internal/leads"
	"propertycrm/server/internal/matching"
	"propertycrm/server/internal/models"
	"propertycrm/server/internal/recommendation"
	"propertycrm/server/internal/scheduler"
)

type recordingQueue struct {
	mu     sync.Mutex
	pushed [][]uuid.UUID
}

func (q *recordingQueue) PushChunked(ids []uuid.UUID, size int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushed = append(q.pushed, ids)
	return nil
}

type testServer struct {
	router *gin.Engine
	db     *database.Database
	queue  *recordingQueue
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	gdb, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(gdb))

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	db := database.NewFromGorm(gdb, logger)
	t.Cleanup(func() { _ = db.Close() })

	manager := recommendation.NewManager(db, matching.NewEngine(matching.DefaultWeights()), recommendation.Options{Workers: 2}, logger)
	q := &recordingQueue{}
	handler := NewHandler(Dependencies{
		Properties:      db,
		Leads:           leads.NewService(db, logger),
		Recommendations: manager,
		Queue:           q,
		BatchRunner:     scheduler.NewScheduler(manager, 2, logger),
		BatchSize:       100,
	}, logger)

	router := gin.New()
	SetupRoutes(router, handler)
	return &testServer{router: router, db: db, queue: q}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateLeadComputesScoreAndIgnoresClientScore(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/leads", map[string]any{
		"name":       "Dana",
		"email":      "dana@example.com",
		"budget_max": 250_000,
		"timeline":   "immediate",
		"buyer_type": "Investor",
		"score":      3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	lead := decode[models.Lead](t, w)
	// 50 + 20 budget + 25 timeline + 15 investor
	assert.Equal(t, 100, lead.Score)
	assert.Equal(t, models.TimelineImmediate, lead.Timeline)
	assert.Equal(t, models.LeadStatusNew, lead.Status)

	w = s.do(t, http.MethodPut, "/api/leads/"+lead.ID.String(), map[string]any{
		"timeline":   "Flexible",
		"buyer_type": "Retail",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 70, decode[models.Lead](t, w).Score)
}

func TestCreateLeadRejectsUnknownEnums(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/leads", map[string]any{
		"name": "Eve", "timeline": "Eventually", "buyer_type": "Retail",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/leads", map[string]any{
		"name": "Eve", "timeline": "Flexible", "buyer_type": "Retail",
		"budget_min": 500, "budget_max": 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadNotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/leads/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/leads/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/leads/"+uuid.NewString()+"/suggestions", nil).Code)
}

func TestListLeadsOrderedByScore(t *testing.T) {
	s := newTestServer(t)
	for _, bt := range []string{"Retail", "HNI", "Commercial"} {
		w := s.do(t, http.MethodPost, "/api/leads", map[string]any{
			"name": bt, "timeline": "Flexible", "buyer_type": bt,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/leads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Lead](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, []int{70, 60, 50}, []int{list[0].Score, list[1].Score, list[2].Score})

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/leads?status=Dormant", nil).Code)
}

func TestPropertyLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPut, "/api/customers/"+uuid.NewString()+"/preferences", map[string]any{
		"property_types": []string{"villa"},
		"budget_min":     1_000_000,
		"budget_max":     3_000_000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/properties", map[string]any{
		"title": "Palm villa", "price": 2_000_000, "type": "Villa", "location": "Palm Jumeirah",
		"bedrooms": 4, "bathrooms": 3, "amenities": []string{"pool"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Property](t, w)
	assert.Equal(t, models.PropertyStatusAvailable, p.Status)

	s.queue.mu.Lock()
	require.Len(t, s.queue.pushed, 1)
	assert.Len(t, s.queue.pushed[0], 1)
	s.queue.mu.Unlock()

	for _, kind := range []string{"view", "inquiry", "inquiry", "offer"} {
		w = s.do(t, http.MethodPost, "/api/properties/"+p.ID.String()+"/events", map[string]any{"kind": kind})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodPost, "/api/properties/"+p.ID.String()+"/events", map[string]any{"kind": "like"}).Code)

	w = s.do(t, http.MethodGet, "/api/properties/"+p.ID.String()+"/performance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	perf := decode[models.PropertyPerformance](t, w)
	assert.InDelta(t, 14.1, perf.InterestScore, 1e-9)
	assert.InDelta(t, 50.0, perf.ConversionRate, 1e-9)

	w = s.do(t, http.MethodPut, "/api/properties/"+p.ID.String(), map[string]any{
		"title": "Palm villa", "price": 2_100_000, "type": "Villa", "status": "Sold",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Property](t, w)
	assert.Equal(t, models.PropertyStatusSold, updated.Status)
	assert.Equal(t, int64(2), updated.Inquiries)

	s.queue.mu.Lock()
	assert.Len(t, s.queue.pushed, 2)
	s.queue.mu.Unlock()

	w = s.do(t, http.MethodGet, "/api/properties?status=Available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Property](t, w))
}

func TestListPropertiesByInterest(t *testing.T) {
	s := newTestServer(t)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/properties", map[string]any{
			"title": "Flat", "price": 500_000, "type": "Apartment",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode[models.Property](t, w).ID)
	}
	// Last property gets the most interest.
	s.do(t, http.MethodPost, "/api/properties/"+ids[2].String()+"/events", map[string]any{"kind": "tour"})
	s.do(t, http.MethodPost, "/api/properties/"+ids[1].String()+"/events", map[string]any{"kind": "view"})

	w := s.do(t, http.MethodGet, "/api/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Property](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
}

func TestPreferencesAndRecommendations(t *testing.T) {
	s := newTestServer(t)
	customer := uuid.NewString()

	w := s.do(t, http.MethodGet, "/api/customers/"+customer+"/preferences", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, price := range []float64{1_500_000, 2_500_000, 8_000_000} {
		w = s.do(t, http.MethodPost, "/api/properties", map[string]any{
			"title": "Villa", "price": price, "type": "Villa", "location": "Palm Jumeirah",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = s.do(t, http.MethodPut, "/api/customers/"+customer+"/preferences", map[string]any{
		"property_types": []string{"Villa"},
		"locations":      []string{"palm"},
		"budget_min":     1_000_000,
		"budget_max":     3_000_000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}](t, w)
	// The 8M villa scores 45 and stays below the threshold.
	require.Len(t, body.Recommendations, 2)
	assert.Equal(t, 70, body.Recommendations[0].ConfidenceScore)
	assert.Equal(t, 70, body.Recommendations[1].ConfidenceScore)

	w = s.do(t, http.MethodGet, "/api/customers/"+customer+"/recommendations?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Recommendation](t, w), 1)

	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodGet, "/api/customers/"+customer+"/recommendations?limit=abc", nil).Code)

	w = s.do(t, http.MethodPut, "/api/customers/"+customer+"/preferences", map[string]any{
		"property_types": []string{"Castle"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/recommendations/regenerate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[recommendation.BatchResult](t, w)
	assert.Equal(t, 1, res.Succeeded)
}

func TestSuggestionsAndDemand(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/properties", map[string]any{
		"title": "Tower", "price": 1_000_000, "type": "Commercial",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[models.Property](t, w)

	w = s.do(t, http.MethodPost, "/api/leads", map[string]any{
		"name": "Corp", "timeline": "Immediate", "buyer_type": "Commercial",
		"budget_min": 900_000, "budget_max": 1_200_000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	lead := decode[models.Lead](t, w)

	w = s.do(t, http.MethodGet, "/api/leads/"+lead.ID.String()+"/suggestions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	suggestions := decode[[]models.LeadPropertySuggestion](t, w)
	require.Len(t, suggestions, 1)
	assert.InDelta(t, 70.0, suggestions[0].MatchScore, 1e-9)
	assert.Equal(t, []string{matching.ReasonExactBudget, matching.ReasonCommercialFit}, suggestions[0].Reasons)

	w = s.do(t, http.MethodGet, "/api/properties/"+p.ID.String()+"/demand", nil)
	require.Equal(t, http.StatusOK, w.Code)
	demand := decode[models.PropertyDemand](t, w)
	assert.Equal(t, 1, demand.Commercial)
	assert.Equal(t, 1, demand.Total)
	assert.Zero(t, demand.MatchScore)
}
