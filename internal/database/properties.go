package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"propertycrm/server/internal/models"
)

// propertyColumns are the listing columns a property update may write.
// Engagement counters are excluded; they only move through IncrementEngagement.
var propertyColumns = []string{
	"title", "price", "type", "location", "bedrooms", "bathrooms",
	"amenities", "status", "updated_at",
}

var engagementColumns = map[models.EngagementKind]string{
	models.EngagementView:    "views",
	models.EngagementInquiry: "inquiries",
	models.EngagementTour:    "tours",
	models.EngagementOffer:   "offers",
}

func (d *Database) CreateProperty(ctx context.Context, p *models.Property) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return d.db.WithContext(ctx).Create(p).Error
}

func (d *Database) UpdateProperty(ctx context.Context, p *models.Property) error {
	res := d.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", p.ID).
		Select(propertyColumns).
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetProperty(ctx context.Context, id uuid.UUID) (models.Property, error) {
	var p models.Property
	err := d.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, notFound(err)
}

func (d *Database) ListProperties(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	err := d.db.WithContext(ctx).Order("created_at").Find(&props).Error
	return props, err
}

func (d *Database) ListPropertiesByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error) {
	var props []models.Property
	err := d.db.WithContext(ctx).Where("status = ?", status).Order("created_at").Find(&props).Error
	return props, err
}

// IncrementEngagement atomically bumps one engagement counter and returns
// the property as stored afterwards.
func (d *Database) IncrementEngagement(ctx context.Context, id uuid.UUID, kind models.EngagementKind) (models.Property, error) {
	col, ok := engagementColumns[kind]
	if !ok {
		return models.Property{}, fmt.Errorf("unknown engagement kind %q", kind)
	}

	var p models.Property
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Property{}).
			Where("id = ?", id).
			UpdateColumn(col, gorm.Expr(col+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&p, "id = ?", id).Error
	})
	return p, err
}
