package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/invsync/backend/internal/application/catalog"
	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/auth"
	"github.com/invsync/backend/internal/infrastructure/config"
	"github.com/invsync/backend/internal/infrastructure/logger"
	"github.com/invsync/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type testEnv struct {
	router      *gin.Engine
	products    *memProductRepo
	combos      *memComboRepo
	shopify     *stubStorefront
	bigcommerce *stubStorefront
	verifier    *auth.OwnerTokenVerifier
}

// newTestEnv wires real services over in-memory stores and stub storefronts.
// With withAuth the /api group requires an owner token.
func newTestEnv(t *testing.T, withAuth bool) *testEnv {
	t.Helper()
	env := &testEnv{
		products:    newMemProductRepo(),
		combos:      newMemComboRepo(),
		shopify:     newStubStorefront(integration.PlatformCodeShopify),
		bigcommerce: newStubStorefront(integration.PlatformCodeBigCommerce),
		verifier:    auth.NewOwnerTokenVerifier(config.AuthConfig{Enabled: true, Secret: testSecret}),
	}

	log := zap.NewNop()
	storefronts := []integration.Storefront{env.shopify, env.bigcommerce}
	syncService := appintegration.NewSyncService(env.products, storefronts, log)
	storefrontService := appintegration.NewStorefrontService(storefronts, nil, log)
	comboService := catalogapp.NewComboService(env.combos, log)

	items := NewItemHandler(syncService)
	shopify := NewStorefrontHandler(storefrontService, integration.PlatformCodeShopify)
	bigcommerce := NewStorefrontHandler(storefrontService, integration.PlatformCodeBigCommerce)
	combos := NewComboHandler(comboService)

	r := gin.New()
	r.Use(logger.GinMiddleware(log))
	api := r.Group("/api")
	if withAuth {
		api.Use(middleware.OwnerAuth(middleware.OwnerAuthConfig{Verifier: env.verifier}))
	}
	api.POST("/add-item", items.AddItem)
	api.GET("/get-item", items.GetItems)
	api.GET("/all-products", items.GetAllProducts)
	api.PUT("/update-item", items.UpdateItem)
	api.DELETE("/delete-item/:itemId", items.DeleteItem)
	api.GET("/all-products/shopify", shopify.List)
	api.PUT("/all-products/shopify", shopify.Update)
	api.DELETE("/all-products/shopify/:id", shopify.Delete)
	api.GET("/bigcommerce", bigcommerce.List)
	api.PUT("/bigcommerce", bigcommerce.Update)
	api.DELETE("/bigcommerce/:id", bigcommerce.Delete)
	api.POST("/combos", combos.Create)
	api.GET("/combos", combos.List)
	api.PUT("/combos/:comboId", combos.Update)
	api.DELETE("/combos/:comboId", combos.Delete)
	env.router = r
	return env
}

func (e *testEnv) token(t *testing.T, owner uuid.UUID) string {
	t.Helper()
	tok, err := e.verifier.Issue(owner, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends body as JSON (raw strings are sent verbatim) and returns the recorder
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response body
type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
