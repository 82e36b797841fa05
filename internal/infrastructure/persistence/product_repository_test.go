package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ItemModel{}, &models.ComboModel{})
	require.NoError(t, err)

	return db
}

func newTestProduct(t *testing.T, owner uuid.UUID, code string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(owner, code, "Widget "+code, 10, decimal.RequireFromString("9.99"))
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	product := newTestProduct(t, owner, "P1")
	require.NoError(t, repo.Save(ctx, product))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, owner, found.OwnerID)
		assert.Equal(t, "P1", found.ProductCode)
		assert.Equal(t, "Widget P1", found.ExternalName)
		assert.Equal(t, 10, found.Quantity)
		assert.True(t, decimal.RequireFromString("9.99").Equal(found.Price))
		assert.Nil(t, found.ShopifyProductID)
		assert.Nil(t, found.BigCommerceProductID)
	})

	t.Run("finds by code", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)

		_, err = repo.FindByCode(ctx, "nope")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestGormProductRepository_SaveUpdatesLinks(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	product := newTestProduct(t, uuid.New(), "P1")
	require.NoError(t, repo.Save(ctx, product))

	product.LinkShopifyProduct("8001")
	product.LinkBigCommerceProduct("112")
	qty := 3
	require.NoError(t, product.ApplyChanges(catalog.ProductChanges{Quantity: &qty}))
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "8001", found.ShopifyID())
	assert.Equal(t, "112", found.BigCommerceID())
	assert.Equal(t, 3, found.Quantity)

	product.LinkShopifyProduct("")
	require.NoError(t, repo.Save(ctx, product))
	found, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, found.ShopifyProductID)
}

func TestGormProductRepository_FindByOwner(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	first := newTestProduct(t, owner, "A")
	second := newTestProduct(t, owner, "B")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	foreign := newTestProduct(t, other, "C")
	for _, p := range []*catalog.Product{second, first, foreign} {
		require.NoError(t, repo.Save(ctx, p))
	}

	products, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ProductCode)
	assert.Equal(t, "B", products[1].ProductCode)

	none, err := repo.FindByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormProductRepository_FindByCodeReturnsOldest(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	older := newTestProduct(t, uuid.New(), "DUP")
	newer := newTestProduct(t, uuid.New(), "DUP")
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	found, err := repo.FindByCode(ctx, "DUP")
	require.NoError(t, err)
	assert.Equal(t, older.ID, found.ID)
}

func TestGormProductRepository_FindByOwnerAndCode(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	seller, other := uuid.New(), uuid.New()
	theirs := newTestProduct(t, other, "DUP")
	mine := newTestProduct(t, seller, "DUP")
	mine.CreatedAt = theirs.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, theirs))
	require.NoError(t, repo.Save(ctx, mine))

	found, err := repo.FindByOwnerAndCode(ctx, seller, "DUP")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, found.ID)

	_, err = repo.FindByOwnerAndCode(ctx, uuid.New(), "DUP")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGormProductRepository_Delete(t *testing.T) {
	repo := NewGormProductRepository(setupCatalogTestDB(t))
	ctx := context.Background()

	product := newTestProduct(t, uuid.New(), "P1")
	require.NoError(t, repo.Save(ctx, product))

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err := repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, product.ID), catalog.ErrProductNotFound)
}

func TestGormProductRepository_DatabaseErrors(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)
	dbErr := errors.New("connection reset by peer")
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnError(dbErr)
	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, catalog.ErrProductNotFound)

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE user_id = \$1 ORDER BY created_at ASC`).
		WithArgs(id).
		WillReturnError(dbErr)
	_, err = repo.FindByOwner(context.Background(), id)
	assert.ErrorIs(t, err, dbErr)

	mock.ExpectExec(`DELETE FROM "items" WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(dbErr)
	assert.ErrorIs(t, repo.Delete(context.Background(), id), dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_DeleteNoRows(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "items" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), catalog.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
