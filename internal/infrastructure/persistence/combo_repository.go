package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormComboRepository implements catalog.ComboRepository using GORM
type GormComboRepository struct {
	db *gorm.DB
}

// NewGormComboRepository creates a new GormComboRepository
func NewGormComboRepository(db *gorm.DB) *GormComboRepository {
	return &GormComboRepository{db: db}
}

// FindByID finds a combo by its ID
func (r *GormComboRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Combo, error) {
	var model models.ComboModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrComboNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner lists the combos of one owner, oldest first
func (r *GormComboRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Combo, error) {
	var comboModels []models.ComboModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&comboModels).Error; err != nil {
		return nil, err
	}

	combos := make([]*catalog.Combo, len(comboModels))
	for i := range comboModels {
		combos[i] = comboModels[i].ToDomain()
	}
	return combos, nil
}

// Save creates or updates a combo
func (r *GormComboRepository) Save(ctx context.Context, combo *catalog.Combo) error {
	model := models.ComboModelFromDomain(combo)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a combo
func (r *GormComboRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ComboModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrComboNotFound
	}
	return nil
}

var _ catalog.ComboRepository = (*GormComboRepository)(nil)
