package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComboHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	owner := uuid.New()
	itemID := uuid.NewString()

	w := env.do(t, http.MethodPost, "/api/combos", map[string]any{
		"userId": owner.String(),
		"name":   "Breakfast Set",
		"sku":    "SET-1",
		"price":  "25.50",
		"items": []map[string]any{
			{"itemId": itemID, "productID": "SKU-1", "name": "Mug", "price": 12.5, "quantity": 2},
		},
	})
	assertStatus(t, w, http.StatusCreated)
	resp := decode(t, w)
	assert.Equal(t, "Combo created", resp.Message)
	assert.Equal(t, "Breakfast Set", resp.Data["name"])
	assert.EqualValues(t, 25.5, resp.Data["price"])
	comboID := resp.Data["_id"].(string)
	items := resp.Data["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, itemID, items[0].(map[string]any)["itemId"])

	w = env.do(t, http.MethodGet, "/api/combos?userId="+owner.String(), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decode(t, w).Data["combos"], 1)

	w = env.do(t, http.MethodPut, "/api/combos/"+comboID, map[string]any{"name": "Brunch Set", "price": 30})
	assertStatus(t, w, http.StatusOK)
	resp = decode(t, w)
	assert.Equal(t, "Combo updated", resp.Message)
	assert.Equal(t, "Brunch Set", resp.Data["name"])
	assert.EqualValues(t, 30, resp.Data["price"])
	assert.Equal(t, "SET-1", resp.Data["sku"])

	w = env.do(t, http.MethodDelete, "/api/combos/"+comboID, nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "Combo deleted", decode(t, w).Message)

	w = env.do(t, http.MethodDelete, "/api/combos/"+comboID, nil)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))
}

func TestComboHandler_Validation(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/combos", map[string]any{"userId": uuid.NewString(), "name": "No Price"})
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/combos", map[string]any{"userId": "x", "name": "Set", "price": 1})
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/combos", map[string]any{"userId": uuid.NewString(), "name": "Set", "price": "abc"})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, dto.ErrCodeInvalidJSON, errorCode(t, w))

	w = env.do(t, http.MethodGet, "/api/combos", nil)
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPut, "/api/combos/"+uuid.NewString(), map[string]any{"name": "x"})
	assertStatus(t, w, http.StatusNotFound)

	w = env.do(t, http.MethodPut, "/api/combos/not-an-id", map[string]any{"name": "x"})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestComboHandler_OwnerMismatch(t *testing.T) {
	env := newTestEnv(t, true)
	bearer := "Bearer " + env.token(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/combos",
		map[string]any{"userId": uuid.NewString(), "name": "Set", "price": 1}, "Authorization", bearer)
	assertStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodGet, "/api/combos?userId="+uuid.NewString(), nil, "Authorization", bearer)
	assertStatus(t, w, http.StatusForbidden)
}
