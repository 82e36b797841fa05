package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// In-memory product store
// ---------------------------------------------------------------------------

type memProductRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]catalog.Product
	saveErr    error
	deleteErr  error
	saves      int
	failSaveAt int // fail the n-th save (1-based); 0 disables
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
	return r.oldestMatch(func(p catalog.Product) bool { return p.ProductCode == code })
}

func (r *memProductRepo) FindByOwnerAndCode(_ context.Context, ownerID uuid.UUID, code string) (*catalog.Product, error) {
	return r.oldestMatch(func(p catalog.Product) bool { return p.OwnerID == ownerID && p.ProductCode == code })
}

func (r *memProductRepo) oldestMatch(match func(catalog.Product) bool) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *catalog.Product
	for _, p := range r.items {
		if !match(p) {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, catalog.ErrProductNotFound
	}
	return found, nil
}

func (r *memProductRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*catalog.Product{}
	for _, p := range r.items {
		if p.OwnerID == ownerID {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
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
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil || (r.failSaveAt > 0 && r.saves == r.failSaveAt) {
		if r.saveErr != nil {
			return r.saveErr
		}
		return errors.New("disk full")
	}
	r.items[product.ID] = *product
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
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

func (r *memProductRepo) get(id uuid.UUID) (catalog.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	return p, ok
}

// ---------------------------------------------------------------------------
// Fake storefront that fails on command
// ---------------------------------------------------------------------------

type fakeStorefront struct {
	mu       sync.Mutex
	code     integration.PlatformCode
	caps     integration.Capabilities
	enabled  bool
	failOn   map[string]error
	calls    []string
	nextID   int
	products map[string]*integration.RemoteProduct

	searchResults []integration.RemoteProduct
	searchQueries []string
	location      string
	inventory     []integration.InventoryLevel
	inventoryAt   []string
	patches       []integration.ProductPatch
	uploads       []integration.ImageUpload
	listings      []*integration.Listing
	deleted       []string
}

func newShopifyFake() *fakeStorefront {
	return &fakeStorefront{
		code: integration.PlatformCodeShopify,
		caps: integration.Capabilities{
			SeparateInventoryOnCreate: true,
			PublishesListing:          true,
			AutoLinkMatch:             integration.MatchExactTitle,
		},
		enabled:  true,
		failOn:   map[string]error{},
		products: map[string]*integration.RemoteProduct{},
		location: "loc-shopify",
		nextID:   1000,
	}
}

func newBigCommerceFake() *fakeStorefront {
	return &fakeStorefront{
		code: integration.PlatformCodeBigCommerce,
		caps: integration.Capabilities{
			CatalogInventory:    true,
			SearchByProductCode: true,
			AutoLinkMatch:       integration.MatchFirstResult,
		},
		enabled:  true,
		failOn:   map[string]error{},
		products: map[string]*integration.RemoteProduct{},
		location: "1",
		nextID:   2000,
	}
}

func (f *fakeStorefront) fail(method string, err error) *fakeStorefront {
	f.failOn[method] = err
	return f
}

func (f *fakeStorefront) record(method string) error {
	f.calls = append(f.calls, method)
	return f.failOn[method]
}

func (f *fakeStorefront) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeStorefront) allCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// seed registers a remote product with one variant
func (f *fakeStorefront) seed(id, title string) *integration.RemoteProduct {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &integration.RemoteProduct{
		Platform: f.code,
		ID:       id,
		Title:    title,
		Variants: []integration.RemoteVariant{{ID: id + "-v1", SKU: "SKU-" + id, InventoryItemID: id + "-inv"}},
	}
	f.products[id] = p
	return p
}

func (f *fakeStorefront) PlatformCode() integration.PlatformCode { return f.code }

func (f *fakeStorefront) Capabilities() integration.Capabilities { return f.caps }

func (f *fakeStorefront) IsEnabled(context.Context, uuid.UUID) bool { return f.enabled }

func (f *fakeStorefront) CreateProduct(_ context.Context, _ uuid.UUID, l *integration.Listing) (*integration.RemoteProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings = append(f.listings, l)
	if err := f.record("create"); err != nil {
		return nil, err
	}
	f.nextID++
	id := fmt.Sprintf("%d", f.nextID)
	p := &integration.RemoteProduct{Platform: f.code, ID: id, Title: l.Title, Price: l.Price}
	for i, v := range integration.ExpandVariants(l) {
		p.Variants = append(p.Variants, integration.RemoteVariant{
			ID:              fmt.Sprintf("%s-v%d", id, i+1),
			SKU:             v.SKU,
			InventoryItemID: fmt.Sprintf("%s-inv%d", id, i+1),
		})
	}
	f.products[id] = p
	return p, nil
}

func (f *fakeStorefront) GetProduct(_ context.Context, _ uuid.UUID, remoteID string) (*integration.RemoteProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get"); err != nil {
		return nil, err
	}
	p, ok := f.products[remoteID]
	if !ok {
		return nil, integration.ErrRemoteProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStorefront) UpdateProduct(_ context.Context, _ uuid.UUID, remoteID string, patch integration.ProductPatch) (*integration.RemoteProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if err := f.record("update"); err != nil {
		return nil, err
	}
	p, ok := f.products[remoteID]
	if !ok {
		return nil, integration.ErrRemoteProductNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStorefront) DeleteProduct(_ context.Context, _ uuid.UUID, remoteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, remoteID)
	if err := f.record("delete"); err != nil {
		return err
	}
	delete(f.products, remoteID)
	return nil
}

func (f *fakeStorefront) ListProducts(context.Context, uuid.UUID) ([]integration.RemoteProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list"); err != nil {
		return nil, err
	}
	out := []integration.RemoteProduct{}
	for _, p := range f.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStorefront) SearchProducts(_ context.Context, _ uuid.UUID, query string) ([]integration.RemoteProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchQueries = append(f.searchQueries, query)
	if err := f.record("search"); err != nil {
		return nil, err
	}
	if f.searchResults != nil {
		return f.searchResults, nil
	}
	var out []integration.RemoteProduct
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStorefront) ResolveLocation(context.Context, uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("location"); err != nil {
		return "", err
	}
	return f.location, nil
}

func (f *fakeStorefront) SetInventory(_ context.Context, _ uuid.UUID, locationID string, levels []integration.InventoryLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("inventory"); err != nil {
		return err
	}
	f.inventoryAt = append(f.inventoryAt, locationID)
	f.inventory = append(f.inventory, levels...)
	return nil
}

func (f *fakeStorefront) UploadImages(_ context.Context, _ uuid.UUID, _ string, images []integration.ImageUpload) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("images"); err != nil {
		return 0, err
	}
	f.uploads = append(f.uploads, images...)
	return len(images), nil
}

func (f *fakeStorefront) Publish(context.Context, uuid.UUID, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("publish")
}

var _ integration.Storefront = (*fakeStorefront)(nil)

// ---------------------------------------------------------------------------
// Location cache
// ---------------------------------------------------------------------------

type memLocationCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	sets   int
}

func newMemLocationCache() *memLocationCache {
	return &memLocationCache{values: map[string]string{}}
}

func (c *memLocationCache) key(platform integration.PlatformCode, ownerID uuid.UUID) string {
	return platform.String() + ":" + ownerID.String()
}

func (c *memLocationCache) Get(_ context.Context, platform integration.PlatformCode, ownerID uuid.UUID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.values[c.key(platform, ownerID)], nil
}

func (c *memLocationCache) Set(_ context.Context, platform integration.PlatformCode, ownerID uuid.UUID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.values[c.key(platform, ownerID)] = id
	return nil
}
