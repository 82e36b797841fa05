package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
)

var errRemoteDown = errors.New("connection refused")

type memProductRepo struct {
	mu      sync.Mutex
	items   map[uuid.UUID]catalog.Product
	saveErr error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: map[uuid.UUID]catalog.Product{}}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ProductCode == code {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProductRepo) FindByOwnerAndCode(_ context.Context, ownerID uuid.UUID, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.OwnerID == ownerID && p.ProductCode == code {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProductRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	all, _ := r.FindAll(ctx)
	out := []*catalog.Product{}
	for _, p := range all {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAll(_ context.Context) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*catalog.Product{}
	for _, p := range r.items {
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items[product.ID] = *product
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memProductRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type memComboRepo struct {
	mu     sync.Mutex
	combos map[uuid.UUID]catalog.Combo
}

func newMemComboRepo() *memComboRepo {
	return &memComboRepo{combos: map[uuid.UUID]catalog.Combo{}}
}

func (r *memComboRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Combo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.combos[id]
	if !ok {
		return nil, catalog.ErrComboNotFound
	}
	return &c, nil
}

func (r *memComboRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*catalog.Combo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*catalog.Combo{}
	for _, c := range r.combos {
		if c.OwnerID == ownerID {
			cp := c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memComboRepo) Save(_ context.Context, combo *catalog.Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combos[combo.ID] = *combo
	return nil
}

func (r *memComboRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.combos[id]; !ok {
		return catalog.ErrComboNotFound
	}
	delete(r.combos, id)
	return nil
}

// stubStorefront keeps remote products in memory and fails every call when down is set
type stubStorefront struct {
	mu       sync.Mutex
	code     integration.PlatformCode
	caps     integration.Capabilities
	enabled  bool
	down     bool
	nextID   int
	products map[string]*integration.RemoteProduct
	patches  []integration.ProductPatch
	levels   []integration.InventoryLevel
	deleted  []string
}

func newStubStorefront(code integration.PlatformCode) *stubStorefront {
	sf := &stubStorefront{
		code:     code,
		enabled:  true,
		nextID:   100,
		products: map[string]*integration.RemoteProduct{},
	}
	if code == integration.PlatformCodeShopify {
		sf.caps = integration.Capabilities{SeparateInventoryOnCreate: true, PublishesListing: true}
	} else {
		sf.caps = integration.Capabilities{SearchByProductCode: true, AutoLinkMatch: integration.MatchFirstResult}
	}
	return sf
}

func (s *stubStorefront) seed(p integration.RemoteProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Platform = s.code
	s.products[p.ID] = &p
}

func (s *stubStorefront) PlatformCode() integration.PlatformCode { return s.code }

func (s *stubStorefront) Capabilities() integration.Capabilities { return s.caps }

func (s *stubStorefront) IsEnabled(context.Context, uuid.UUID) bool { return s.enabled }

func (s *stubStorefront) CreateProduct(_ context.Context, _ uuid.UUID, listing *integration.Listing) (*integration.RemoteProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errRemoteDown
	}
	s.nextID++
	id := fmt.Sprintf("%d", s.nextID)
	p := &integration.RemoteProduct{
		Platform: s.code,
		ID:       id,
		Title:    listing.Title,
		Price:    listing.Price,
		Variants: []integration.RemoteVariant{{ID: id + "-v1", InventoryItemID: id + "-inv"}},
	}
	s.products[id] = p
	cp := *p
	return &cp, nil
}

func (s *stubStorefront) GetProduct(_ context.Context, _ uuid.UUID, remoteID string) (*integration.RemoteProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errRemoteDown
	}
	p, ok := s.products[remoteID]
	if !ok {
		return nil, integration.ErrRemoteProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubStorefront) UpdateProduct(_ context.Context, _ uuid.UUID, remoteID string, patch integration.ProductPatch) (*integration.RemoteProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errRemoteDown
	}
	p, ok := s.products[remoteID]
	if !ok {
		return nil, integration.ErrRemoteProductNotFound
	}
	s.patches = append(s.patches, patch)
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	cp := *p
	return &cp, nil
}

func (s *stubStorefront) DeleteProduct(_ context.Context, _ uuid.UUID, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errRemoteDown
	}
	if _, ok := s.products[remoteID]; !ok {
		return integration.ErrRemoteProductNotFound
	}
	delete(s.products, remoteID)
	s.deleted = append(s.deleted, remoteID)
	return nil
}

func (s *stubStorefront) ListProducts(context.Context, uuid.UUID) ([]integration.RemoteProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, errRemoteDown
	}
	out := make([]integration.RemoteProduct, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStorefront) SearchProducts(context.Context, uuid.UUID, string) ([]integration.RemoteProduct, error) {
	if s.down {
		return nil, errRemoteDown
	}
	return nil, nil
}

func (s *stubStorefront) ResolveLocation(context.Context, uuid.UUID) (string, error) {
	if s.down {
		return "", errRemoteDown
	}
	return "loc-1", nil
}

func (s *stubStorefront) SetInventory(_ context.Context, _ uuid.UUID, _ string, levels []integration.InventoryLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return errRemoteDown
	}
	s.levels = append(s.levels, levels...)
	return nil
}

func (s *stubStorefront) UploadImages(_ context.Context, _ uuid.UUID, _ string, images []integration.ImageUpload) (int, error) {
	if s.down {
		return 0, errRemoteDown
	}
	return len(images), nil
}

func (s *stubStorefront) Publish(context.Context, uuid.UUID, string) error {
	if s.down {
		return errRemoteDown
	}
	return nil
}

func (s *stubStorefront) remoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}
