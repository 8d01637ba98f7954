package database

import (
	"context"

	"github.com/google/uuid"

	"propertycrm/server/internal/models"
)

// leadColumns are the columns a lead update may write.
var leadColumns = []string{
	"name", "email", "phone", "budget_min", "budget_max",
	"timeline", "buyer_type", "score", "status", "updated_at",
}

func (d *Database) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	return d.db.WithContext(ctx).Create(lead).Error
}

func (d *Database) UpdateLead(ctx context.Context, lead *models.Lead) error {
	res := d.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Select(leadColumns).
		Updates(lead)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) GetLead(ctx context.Context, id uuid.UUID) (models.Lead, error) {
	var lead models.Lead
	err := d.db.WithContext(ctx).First(&lead, "id = ?", id).Error
	return lead, notFound(err)
}

// ListLeads returns every lead, best score first.
func (d *Database) ListLeads(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	err := d.db.WithContext(ctx).Order("score DESC").Order("created_at").Find(&leads).Error
	return leads, err
}

func (d *Database) ListLeadsByStatus(ctx context.Context, statuses ...models.LeadStatus) ([]models.Lead, error) {
	var leads []models.Lead
	err := d.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("score DESC").
		Order("created_at").
		Find(&leads).Error
	return leads, err
}
