package integration

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// PlatformCode Tests
// ---------------------------------------------------------------------------

func TestPlatformCode_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		code     PlatformCode
		expected bool
	}{
		{"Shopify valid", PlatformCodeShopify, true},
		{"BigCommerce valid", PlatformCodeBigCommerce, true},
		{"Invalid code", PlatformCode("ETSY"), false},
		{"Empty code", PlatformCode(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.IsValid())
		})
	}
}

func TestPlatformCode_DisplayName(t *testing.T) {
	tests := []struct {
		code     PlatformCode
		expected string
	}{
		{PlatformCodeShopify, "Shopify"},
		{PlatformCodeBigCommerce, "BigCommerce"},
		{PlatformCode("UNKNOWN"), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.DisplayName())
		})
	}
}

func TestAllPlatformCodes_FixedOrder(t *testing.T) {
	assert.Equal(t, []PlatformCode{PlatformCodeShopify, PlatformCodeBigCommerce}, AllPlatformCodes())
}

// ---------------------------------------------------------------------------
// AdapterError Tests
// ---------------------------------------------------------------------------

func TestNewAdapterError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewAdapterError(PlatformCodeShopify, StageCreate, nil))
	})

	t.Run("unwraps to sentinel", func(t *testing.T) {
		cause := fmt.Errorf("%w: HTTP 422", ErrPlatformRequestFailed)
		err := NewAdapterError(PlatformCodeBigCommerce, StageCreate, cause)

		assert.ErrorIs(t, err, ErrPlatformRequestFailed)
		assert.EqualError(t, err, "BigCommerce create failed: integration: platform request failed: HTTP 422")

		var adapterErr *AdapterError
		require.True(t, errors.As(err, &adapterErr))
		assert.Equal(t, PlatformCodeBigCommerce, adapterErr.Platform)
		assert.Equal(t, StageCreate, adapterErr.Stage)
	})

	t.Run("does not double wrap same stage", func(t *testing.T) {
		first := NewAdapterError(PlatformCodeShopify, StageInventory, ErrNoInventoryLocation)
		second := NewAdapterError(PlatformCodeShopify, StageInventory, first)
		assert.Same(t, first, second)
	})
}

// ---------------------------------------------------------------------------
// Remote product Tests
// ---------------------------------------------------------------------------

func TestRemoteProduct_FirstVariant(t *testing.T) {
	var nilProduct *RemoteProduct
	_, ok := nilProduct.FirstVariant()
	assert.False(t, ok)

	p := &RemoteProduct{ID: "1", Variants: []RemoteVariant{{ID: "10"}, {ID: "11"}}}
	v, ok := p.FirstVariant()
	require.True(t, ok)
	assert.Equal(t, "10", v.ID)
}

func TestProductPatch_IsEmpty(t *testing.T) {
	assert.True(t, ProductPatch{}.IsEmpty())

	price := decimal.NewFromInt(5)
	assert.False(t, ProductPatch{Price: &price}.IsEmpty())

	status := "draft"
	assert.False(t, ProductPatch{Status: &status}.IsEmpty())
}
