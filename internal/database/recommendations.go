package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propertycrm/server/internal/models"
)

const insertBatchSize = 100

var preferenceColumns = []string{
	"property_types", "locations", "budget_min", "budget_max",
	"bedrooms", "bathrooms", "amenities", "timeline", "updated_at",
}

func (d *Database) GetPreferenceProfile(ctx context.Context, customerID uuid.UUID) (models.CustomerPreferenceProfile, error) {
	var pref models.CustomerPreferenceProfile
	err := d.db.WithContext(ctx).First(&pref, "customer_id = ?", customerID).Error
	return pref, notFound(err)
}

// UpsertPreferenceProfile creates the customer's profile on first write and
// replaces its criteria afterwards. CreatedAt is kept from the first write.
func (d *Database) UpsertPreferenceProfile(ctx context.Context, pref *models.CustomerPreferenceProfile) error {
	pref.UpdatedAt = time.Now()
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns(preferenceColumns),
		}).
		Create(pref).Error
}

// ListProfileCustomerIDs returns every customer that has a preference profile.
func (d *Database) ListProfileCustomerIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.WithContext(ctx).
		Model(&models.CustomerPreferenceProfile{}).
		Order("customer_id").
		Pluck("customer_id", &ids).Error
	return ids, err
}

func (d *Database) DeleteAllActive(ctx context.Context, customerID uuid.UUID) error {
	return deleteAllActive(d.db.WithContext(ctx), customerID)
}

func (d *Database) InsertMany(ctx context.Context, recs []models.Recommendation) error {
	return insertMany(d.db.WithContext(ctx), recs)
}

// ReplaceActiveRecommendations swaps the customer's active set for recs in
// one transaction. On error the previous set is left as it was.
func (d *Database) ReplaceActiveRecommendations(ctx context.Context, customerID uuid.UUID, recs []models.Recommendation) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAllActive(tx, customerID); err != nil {
			return err
		}
		return insertMany(tx, recs)
	})
}

// QueryByCustomer returns the customer's active recommendations, most
// confident first. A limit <= 0 returns all of them.
func (d *Database) QueryByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Recommendation, error) {
	q := d.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, models.RecommendationStatusActive).
		Order("confidence_score DESC").
		Order("property_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []models.Recommendation
	err := q.Find(&recs).Error
	return recs, err
}

func deleteAllActive(tx *gorm.DB, customerID uuid.UUID) error {
	return tx.
		Where("customer_id = ? AND status = ?", customerID, models.RecommendationStatusActive).
		Delete(&models.Recommendation{}).Error
}

func insertMany(tx *gorm.DB, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if recs[i].ID == uuid.Nil {
			recs[i].ID = uuid.New()
		}
		if recs[i].Status == "" {
			recs[i].Status = models.RecommendationStatusActive
		}
	}
	return tx.CreateInBatches(recs, insertBatchSize).Error
}
