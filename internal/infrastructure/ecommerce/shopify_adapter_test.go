package ecommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestShopifyConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShopifyConfig
		wantErr error
	}{
		{
			name:   "valid config",
			config: &ShopifyConfig{StoreURL: "example.myshopify.com/", AccessToken: "shpat_test"},
		},
		{
			name:    "missing store url",
			config:  &ShopifyConfig{AccessToken: "shpat_test"},
			wantErr: ErrShopifyConfigMissingStoreURL,
		},
		{
			name:    "missing access token",
			config:  &ShopifyConfig{StoreURL: "https://example.myshopify.com"},
			wantErr: ErrShopifyConfigMissingAccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "https://example.myshopify.com", tt.config.StoreURL)
			assert.Equal(t, ShopifyDefaultAPIVersion, tt.config.APIVersion)
			assert.Equal(t, 30, tt.config.TimeoutSeconds)
			assert.Equal(t, "https://example.myshopify.com/admin/api/2024-04", tt.config.BaseURL())
		})
	}
}

// ---------------------------------------------------------------------------
// Adapter Tests
// ---------------------------------------------------------------------------

func TestShopifyAdapter_IsEnabled(t *testing.T) {
	ownerID := uuid.New()

	t.Run("no default config", func(t *testing.T) {
		adapter, err := NewShopifyAdapter(nil, integration.Branding{})
		require.NoError(t, err)
		assert.False(t, adapter.IsEnabled(context.Background(), ownerID))

		_, err = adapter.ListProducts(context.Background(), ownerID)
		assert.ErrorIs(t, err, integration.ErrPlatformNotConfigured)

		require.NoError(t, adapter.SetOwnerConfig(ownerID, NewShopifyConfig("shop.example.com", "token")))
		assert.True(t, adapter.IsEnabled(context.Background(), ownerID))
		assert.False(t, adapter.IsEnabled(context.Background(), uuid.New()))
	})

	t.Run("invalid owner config rejected", func(t *testing.T) {
		adapter, err := NewShopifyAdapter(nil, integration.Branding{})
		require.NoError(t, err)
		assert.ErrorIs(t, adapter.SetOwnerConfig(ownerID, &ShopifyConfig{}), ErrShopifyConfigMissingStoreURL)
	})

	t.Run("invalid default config rejected", func(t *testing.T) {
		_, err := NewShopifyAdapter(&ShopifyConfig{StoreURL: "x"}, integration.Branding{})
		assert.ErrorIs(t, err, ErrShopifyConfigMissingAccessToken)
	})
}

func TestShopifyAdapter_Capabilities(t *testing.T) {
	adapter := createShopifyTestAdapter(t, "http://localhost")
	caps := adapter.Capabilities()
	assert.True(t, caps.SeparateInventoryOnCreate)
	assert.True(t, caps.PublishesListing)
	assert.Equal(t, integration.MatchExactTitle, caps.AutoLinkMatch)
	assert.Equal(t, integration.PlatformCodeShopify, adapter.PlatformCode())
}

func TestShopifyAdapter_CreateProduct(t *testing.T) {
	var captured map[string]any
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-04/products.json", r.URL.Path)
		assert.Equal(t, "test_token", r.Header.Get("X-Shopify-Access-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		io.WriteString(w, `{"product":{"id":1001,"title":"Tee","status":"active","variants":[
			{"id":2001,"sku":"P-1-S","price":"19.99","inventory_item_id":3001},
			{"id":2002,"sku":"P-1-M","price":"19.99","inventory_item_id":3002}]}}`)
	})
	defer server.Close()

	adapter := createShopifyTestAdapter(t, server.URL)
	listing := &integration.Listing{
		ProductCode: "P-1",
		Title:       "Tee",
		ItemType:    "Shirt",
		Brand:       "Acme",
		UPC:         "0123",
		Price:       decimal.RequireFromString("19.99"),
		Quantity:    10,
		Sizes:       []integration.OptionEntry{{Value: "S", Quantity: 4}, {Value: "M", Quantity: 6}},
		Colors:      []integration.OptionEntry{{Value: "Red", Quantity: 1}},
	}

	remote, err := adapter.CreateProduct(context.Background(), uuid.New(), listing)
	require.NoError(t, err)
	assert.Equal(t, "1001", remote.ID)
	assert.Equal(t, integration.PlatformCodeShopify, remote.Platform)
	require.Len(t, remote.Variants, 2)
	assert.Equal(t, "3001", remote.Variants[0].InventoryItemID)
	assert.True(t, remote.Price.Equal(decimal.RequireFromString("19.99")))

	product := captured["product"].(map[string]any)
	assert.Equal(t, "Tee", product["title"])
	assert.Equal(t, "Acme", product["vendor"])
	assert.Equal(t, "Shirt", product["product_type"])
	assert.Equal(t, "active", product["status"])
	assert.Equal(t, "zakapo, Shirt, Acme", product["tags"])
	assert.Equal(t, "tee", product["handle"])

	variants := product["variants"].([]any)
	require.Len(t, variants, 2)
	first := variants[0].(map[string]any)
	assert.Equal(t, "S", first["option1"])
	assert.Equal(t, "Red", first["option2"])
	assert.Equal(t, "19.99", first["price"])
	assert.Equal(t, "P-1-S", first["sku"])
	assert.Equal(t, "deny", first["inventory_policy"])
	assert.NotContains(t, first, "inventory_quantity")

	options := product["options"].([]any)
	assert.Len(t, options, 2)

	metafields := product["metafields"].([]any)
	require.Len(t, metafields, 1)
	assert.Equal(t, "upc", metafields[0].(map[string]any)["key"])
	assert.Equal(t, "custom", metafields[0].(map[string]any)["namespace"])
}

func TestShopifyAdapter_CreateProduct_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"errors":{"title":["can't be blank"]}}`)
		})
		defer server.Close()

		_, err := createShopifyTestAdapter(t, server.URL).CreateProduct(context.Background(), uuid.New(), &integration.Listing{Title: "x"})
		assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
		assert.Contains(t, err.Error(), "HTTP 422")
	})

	t.Run("missing product in response", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{}`)
		})
		defer server.Close()

		_, err := createShopifyTestAdapter(t, server.URL).CreateProduct(context.Background(), uuid.New(), &integration.Listing{Title: "x"})
		assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
	})

	t.Run("malformed json", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"product":`)
		})
		defer server.Close()

		_, err := createShopifyTestAdapter(t, server.URL).CreateProduct(context.Background(), uuid.New(), &integration.Listing{Title: "x"})
		assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {})
		url := server.URL
		server.Close()

		_, err := createShopifyTestAdapter(t, url).CreateProduct(context.Background(), uuid.New(), &integration.Listing{Title: "x"})
		assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
	})
}

func TestShopifyAdapter_UpdateProduct(t *testing.T) {
	t.Run("price resolves first variant", func(t *testing.T) {
		var mu sync.Mutex
		var calls []string
		var putBody map[string]any
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			calls = append(calls, r.Method+" "+r.URL.Path)
			mu.Unlock()
			switch r.Method {
			case http.MethodGet:
				io.WriteString(w, `{"product":{"id":55,"variants":[{"id":77,"price":"1.00"},{"id":78}]}}`)
			case http.MethodPut:
				require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
				io.WriteString(w, `{"product":{"id":55,"title":"New","variants":[{"id":77,"price":"12.50"}]}}`)
			}
		})
		defer server.Close()

		title := "New"
		price := decimal.RequireFromString("12.5")
		remote, err := createShopifyTestAdapter(t, server.URL).UpdateProduct(context.Background(), uuid.New(), "55",
			integration.ProductPatch{Title: &title, Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "New", remote.Title)

		assert.Equal(t, []string{
			"GET /admin/api/2024-04/products/55.json",
			"PUT /admin/api/2024-04/products/55.json",
		}, calls)
		product := putBody["product"].(map[string]any)
		assert.Equal(t, float64(55), product["id"])
		assert.Equal(t, "New", product["title"])
		variants := product["variants"].([]any)
		require.Len(t, variants, 1)
		assert.Equal(t, float64(77), variants[0].(map[string]any)["id"])
		assert.Equal(t, "12.50", variants[0].(map[string]any)["price"])
	})

	t.Run("title only skips variant lookup", func(t *testing.T) {
		var methods []string
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			io.WriteString(w, `{"product":{"id":55,"title":"Only"}}`)
		})
		defer server.Close()

		title := "Only"
		_, err := createShopifyTestAdapter(t, server.URL).UpdateProduct(context.Background(), uuid.New(), "55",
			integration.ProductPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, []string{http.MethodPut}, methods)
	})

	t.Run("no variants", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"product":{"id":55,"variants":[]}}`)
		})
		defer server.Close()

		price := decimal.NewFromInt(3)
		_, err := createShopifyTestAdapter(t, server.URL).UpdateProduct(context.Background(), uuid.New(), "55",
			integration.ProductPatch{Price: &price})
		assert.ErrorIs(t, err, integration.ErrRemoteProductNoVariant)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := createShopifyTestAdapter(t, "http://localhost").UpdateProduct(context.Background(), uuid.New(), "abc",
			integration.ProductPatch{})
		assert.ErrorIs(t, err, ErrInvalidRemoteID)
	})
}

func TestShopifyAdapter_DeleteAndGet(t *testing.T) {
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			assert.Equal(t, "/admin/api/2024-04/products/9.json", r.URL.Path)
			io.WriteString(w, `{}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"errors":"Not Found"}`)
	})
	defer server.Close()

	adapter := createShopifyTestAdapter(t, server.URL)
	assert.NoError(t, adapter.DeleteProduct(context.Background(), uuid.New(), "9"))

	_, err := adapter.GetProduct(context.Background(), uuid.New(), "9")
	assert.ErrorIs(t, err, integration.ErrRemoteProductNotFound)
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
}

type countingTransport struct {
	calls int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls++
	return http.DefaultTransport.RoundTrip(r)
}

func TestShopifyAdapter_WithHTTPClient(t *testing.T) {
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})
	defer server.Close()

	transport := &countingTransport{}
	adapter, err := NewShopifyAdapter(&ShopifyConfig{
		StoreURL:       server.URL,
		AccessToken:    "test_token",
		TimeoutSeconds: 5,
	}, integration.DefaultBranding(), WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)

	require.NoError(t, adapter.DeleteProduct(context.Background(), uuid.New(), "1001"))
	assert.Equal(t, 1, transport.calls)
}

func TestShopifyAdapter_SearchProducts(t *testing.T) {
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Blue Mug", r.URL.Query().Get("title"))
		io.WriteString(w, `{"products":[{"id":1,"title":"blue mug","status":"active","variants":[{"id":2,"price":"4.00","sku":"M-1","inventory_quantity":3}]}]}`)
	})
	defer server.Close()

	products, err := createShopifyTestAdapter(t, server.URL).SearchProducts(context.Background(), uuid.New(), "Blue Mug")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "1", products[0].ID)
	assert.Equal(t, "M-1", products[0].SKU)
	assert.Equal(t, 3, products[0].Quantity)
}

func TestShopifyAdapter_ResolveLocation(t *testing.T) {
	t.Run("configured override", func(t *testing.T) {
		adapter := createShopifyTestAdapter(t, "http://127.0.0.1:1")
		adapter.config.LocationID = "42"
		loc, err := adapter.ResolveLocation(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "42", loc)
	})

	t.Run("first active location", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/api/2024-04/locations.json", r.URL.Path)
			io.WriteString(w, `{"locations":[{"id":1,"active":false},{"id":2,"active":true},{"id":3}]}`)
		})
		defer server.Close()

		loc, err := createShopifyTestAdapter(t, server.URL).ResolveLocation(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "2", loc)
	})

	t.Run("no location", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"locations":[]}`)
		})
		defer server.Close()

		_, err := createShopifyTestAdapter(t, server.URL).ResolveLocation(context.Background(), uuid.New())
		assert.ErrorIs(t, err, integration.ErrNoInventoryLocation)
	})
}

func TestShopifyAdapter_SetInventory(t *testing.T) {
	var bodies []ShopifyInventoryLevelSet
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-04/inventory_levels/set.json", r.URL.Path)
		var body ShopifyInventoryLevelSet
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		if body.InventoryItemID == 302 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `{"inventory_level":{}}`)
	})
	defer server.Close()

	err := createShopifyTestAdapter(t, server.URL).SetInventory(context.Background(), uuid.New(), "7", []integration.InventoryLevel{
		{VariantID: "1", InventoryItemID: "301", Available: 4},
		{VariantID: "2", InventoryItemID: "302", Available: 5},
		{VariantID: "3", Available: 6},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	assert.ErrorIs(t, err, ErrInvalidRemoteID)
	require.Len(t, bodies, 2)
	assert.Equal(t, ShopifyInventoryLevelSet{LocationID: 7, InventoryItemID: 301, Available: 4}, bodies[0])
}

func TestShopifyAdapter_UploadImages(t *testing.T) {
	var images []ShopifyImage
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-04/products/5/images.json", r.URL.Path)
		var body ShopifyImageEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		images = append(images, body.Image)
		io.WriteString(w, `{"image":{"id":1}}`)
	})
	defer server.Close()

	uploaded, err := createShopifyTestAdapter(t, server.URL).UploadImages(context.Background(), uuid.New(), "5", []integration.ImageUpload{
		{Source: "data:image/png;base64,AAAA", Filename: "main.png", Position: 1, IsThumbnail: true},
		{Source: "https://cdn.example.com/x.png", Filename: "remote.png", Position: 2},
		{Source: "data:image/png;base64,BBBB", Filename: "image-size-1.png", Position: 3},
	})

	assert.Equal(t, 2, uploaded)
	assert.ErrorIs(t, err, integration.ErrInvalidImagePayload)
	require.Len(t, images, 2)
	assert.Equal(t, ShopifyImage{Attachment: "AAAA", Filename: "main.png", Position: 1}, images[0])
	assert.Equal(t, 3, images[1].Position)
}

func TestShopifyAdapter_Publish(t *testing.T) {
	t.Run("publishes to online store", func(t *testing.T) {
		var listingBody map[string]any
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/admin/api/2024-04/publications.json":
				io.WriteString(w, `{"publications":[{"id":1,"name":"Point of Sale"},{"id":2,"name":"Online Store"}]}`)
			case "/admin/api/2024-04/publications/2/listings.json":
				require.NoError(t, json.NewDecoder(r.Body).Decode(&listingBody))
				io.WriteString(w, `{}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})
		defer server.Close()

		require.NoError(t, createShopifyTestAdapter(t, server.URL).Publish(context.Background(), uuid.New(), "99"))
		assert.Equal(t, float64(99), listingBody["product_id"])
	})

	t.Run("channel handle fallback", func(t *testing.T) {
		assert.True(t, isOnlineStore(ShopifyPublication{Channel: &struct {
			Handle string `json:"handle"`
		}{Handle: "online_store"}}))
		assert.False(t, isOnlineStore(ShopifyPublication{Name: "Facebook"}))
	})

	t.Run("no online store", func(t *testing.T) {
		server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"publications":[{"id":1,"name":"Point of Sale"}]}`)
		})
		defer server.Close()

		err := createShopifyTestAdapter(t, server.URL).Publish(context.Background(), uuid.New(), "99")
		assert.ErrorIs(t, err, integration.ErrPublicationNotFound)
	})
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, statusError(http.StatusUnauthorized, nil), integration.ErrPlatformAuthFailed)
	assert.ErrorIs(t, statusError(http.StatusTooManyRequests, nil), integration.ErrPlatformRateLimited)

	long := statusError(http.StatusBadRequest, []byte(strings.Repeat("x", 2000)))
	assert.ErrorIs(t, long, integration.ErrPlatformRequestFailed)
	assert.Less(t, len(long.Error()), 600)
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

func createShopifyTestAdapter(t *testing.T, serverURL string) *ShopifyAdapter {
	config := &ShopifyConfig{
		StoreURL:       serverURL,
		AccessToken:    "test_token",
		TimeoutSeconds: 5,
	}
	adapter, err := NewShopifyAdapter(config, integration.DefaultBranding())
	require.NoError(t, err)
	return adapter
}

func createMockServer(_ *testing.T, handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}
