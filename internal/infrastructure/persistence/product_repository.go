package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ---------------------------------------------------------------------------
// ProductReader implementation
// ---------------------------------------------------------------------------

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds the oldest product with the given product code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return r.oldest(r.db.WithContext(ctx).Where("product_id = ?", code))
}

// FindByOwnerAndCode finds the owner's oldest product with the given product code
func (r *GormProductRepository) FindByOwnerAndCode(ctx context.Context, ownerID uuid.UUID, code string) (*catalog.Product, error) {
	return r.oldest(r.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", ownerID, code))
}

func (r *GormProductRepository) oldest(scope *gorm.DB) (*catalog.Product, error) {
	var model models.ItemModel
	if err := scope.Order("created_at ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner lists the products of one owner, oldest first
func (r *GormProductRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	var itemModels []models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toProducts(itemModels), nil
}

// FindAll lists every product, oldest first
func (r *GormProductRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	var itemModels []models.ItemModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toProducts(itemModels), nil
}

// ---------------------------------------------------------------------------
// ProductWriter implementation
// ---------------------------------------------------------------------------

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ItemModelFromDomain(product)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func toProducts(itemModels []models.ItemModel) []*catalog.Product {
	products := make([]*catalog.Product, len(itemModels))
	for i := range itemModels {
		products[i] = itemModels[i].ToDomain()
	}
	return products
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
