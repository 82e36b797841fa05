package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ComboService handles combo business operations. Combos live only in the local store.
type ComboService struct {
	combos catalog.ComboRepository
	logger *zap.Logger
}

// NewComboService creates a new ComboService
func NewComboService(combos catalog.ComboRepository, logger *zap.Logger) *ComboService {
	return &ComboService{
		combos: combos,
		logger: logger,
	}
}

// Create creates a new combo
func (s *ComboService) Create(ctx context.Context, req CreateComboRequest) (*ComboResponse, error) {
	ownerID, err := req.validate()
	if err != nil {
		return nil, err
	}
	items, err := req.items()
	if err != nil {
		return nil, err
	}

	combo, err := catalog.NewCombo(ownerID, req.Name, *req.Price, items)
	if err != nil {
		return nil, err
	}
	combo.SKU = req.SKU
	combo.Description = req.Description
	combo.Image = req.Image
	if req.Weight != nil {
		if err := combo.ApplyChanges(catalog.ComboChanges{Weight: req.Weight}); err != nil {
			return nil, err
		}
	}

	if err := s.combos.Save(ctx, combo); err != nil {
		s.logger.Error("Failed to save combo", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, shared.NewPersistenceError("save combo", err)
	}
	return ToComboResponse(combo), nil
}

// ListByOwner returns the combos of one owner
func (s *ComboService) ListByOwner(ctx context.Context, ownerID string) ([]*ComboResponse, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, shared.NewValidationError("User ID is required.")
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, shared.NewValidationError("Invalid userId")
	}

	combos, err := s.combos.FindByOwner(ctx, owner)
	if err != nil {
		return nil, shared.NewPersistenceError("list combos", err)
	}
	return ToComboResponses(combos), nil
}

// Update applies the present fields. Items are not editable.
func (s *ComboService) Update(ctx context.Context, comboID string, req UpdateComboRequest) (*ComboResponse, error) {
	combo, err := s.find(ctx, comboID)
	if err != nil {
		return nil, err
	}
	if err := combo.ApplyChanges(req.changes()); err != nil {
		return nil, err
	}
	if err := s.combos.Save(ctx, combo); err != nil {
		s.logger.Error("Failed to update combo", zap.String("combo_id", combo.ID.String()), zap.Error(err))
		return nil, shared.NewPersistenceError("update combo", err)
	}
	return ToComboResponse(combo), nil
}

// Delete removes a combo and returns it
func (s *ComboService) Delete(ctx context.Context, comboID string) (*ComboResponse, error) {
	combo, err := s.find(ctx, comboID)
	if err != nil {
		return nil, err
	}
	if err := s.combos.Delete(ctx, combo.ID); err != nil {
		if errors.Is(err, catalog.ErrComboNotFound) {
			return nil, catalog.ErrComboNotFound
		}
		s.logger.Error("Failed to delete combo", zap.String("combo_id", combo.ID.String()), zap.Error(err))
		return nil, shared.NewPersistenceError("delete combo", err)
	}
	return ToComboResponse(combo), nil
}

func (s *ComboService) find(ctx context.Context, comboID string) (*catalog.Combo, error) {
	comboID = strings.TrimSpace(comboID)
	if comboID == "" {
		return nil, shared.NewValidationError("Combo ID required")
	}
	id, err := uuid.Parse(comboID)
	if err != nil {
		return nil, shared.NewValidationError("Invalid comboId")
	}

	combo, err := s.combos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrComboNotFound) || errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrComboNotFound
		}
		return nil, shared.NewPersistenceError("load combo", err)
	}
	return combo, nil
}
