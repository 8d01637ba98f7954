package processor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertycrm/server/internal/database"
	"propertycrm/server/internal/matching"
	"propertycrm/server/internal/models"
	"propertycrm/server/internal/queue"
	"propertycrm/server/internal/recommendation"
)

func setupTestDB(t testing.TB) *database.Database {
	db, err := database.NewTestDB()
	require.NoError(t, err)

	err = database.MigrateSchema(db)
	require.NoError(t, err)

	d := database.NewFromGorm(db, nil)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func seedCustomers(t testing.TB, d *database.Database, n int) []uuid.UUID {
	ctx := context.Background()
	lo, hi := 400_000.0, 900_000.0
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, d.UpsertPreferenceProfile(ctx, &models.CustomerPreferenceProfile{
			CustomerID:    ids[i],
			PropertyTypes: []models.PropertyType{models.PropertyTypeApartment},
			Locations:     []string{"marina"},
			BudgetMin:     &lo,
			BudgetMax:     &hi,
		}))
	}
	return ids
}

func TestBatchProcessingIntegration(t *testing.T) {
	d := setupTestDB(t)
	cfg := testConfig()
	cfg.BatchProcessing.MaxBatchSize = 2
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	ctx := context.Background()

	require.NoError(t, d.CreateProperty(ctx, &models.Property{
		Title: "Marina studio", Price: 600_000, Type: models.PropertyTypeApartment,
		Location: "Dubai Marina", Status: models.PropertyStatusAvailable,
	}))
	customers := seedCustomers(t, d, 5)

	manager := recommendation.NewManager(d, matching.NewEngine(matching.DefaultWeights()), recommendation.Options{Workers: 2}, logger)
	regenerationQueue := queue.NewRegenerationQueue(10, logger)
	processor := NewBatchProcessor(manager, regenerationQueue, cfg, logger)
	processor.Start()
	defer processor.Stop()

	require.NoError(t, regenerationQueue.PushChunked(customers, cfg.BatchProcessing.MaxBatchSize))

	assert.Eventually(t, func() bool {
		for _, c := range customers {
			recs, err := d.QueryByCustomer(ctx, c, 0)
			if err != nil || len(recs) != 1 {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)

	recs, err := d.QueryByCustomer(ctx, customers[0], 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 70, recs[0].ConfidenceScore)
}
