package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/shared"
)

// ErrProductNotFound is returned when no local product matches the lookup
var ErrProductNotFound = shared.NewDomainError(shared.CodeNotFound, "Item not found.")

// ErrProductForbidden is returned when an authenticated seller targets another seller's product
var ErrProductForbidden = shared.NewDomainError(shared.CodeForbidden, "You may only modify your own items")

// ProductReader defines read operations for local products
type ProductReader interface {
	// FindByID finds a product by its local ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds the oldest product carrying the given product code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByOwnerAndCode is FindByCode restricted to one owner's products
	FindByOwnerAndCode(ctx context.Context, ownerID uuid.UUID, code string) (*Product, error)

	// FindByOwner lists products of one owner, oldest first
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Product, error)

	// FindAll lists every local product
	FindAll(ctx context.Context) ([]*Product, error)
}

// ProductWriter defines write operations for local products
type ProductWriter interface {
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete removes a product. Returns ErrProductNotFound when nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository is the local product store
type ProductRepository interface {
	ProductReader
	ProductWriter
}
