package ecommerce

import (
	"errors"
	"fmt"
	"strings"
)

// ShopifyConfig holds configuration for the Shopify Admin REST API
type ShopifyConfig struct {
	// StoreURL is the shop URL, e.g. https://example.myshopify.com
	StoreURL string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version segment
	APIVersion string
	// LocationID overrides location discovery for inventory calls
	LocationID string
	// TimeoutSeconds is the per-call timeout
	TimeoutSeconds int
}

// ShopifyDefaultAPIVersion is used when no API version is configured
const ShopifyDefaultAPIVersion = "2024-04"

// Errors for Shopify configuration
var (
	ErrShopifyConfigMissingStoreURL    = errors.New("shopify: store URL is required")
	ErrShopifyConfigMissingAccessToken = errors.New("shopify: access token is required")
)

// NewShopifyConfig creates a new Shopify configuration with defaults
func NewShopifyConfig(storeURL, accessToken string) *ShopifyConfig {
	return &ShopifyConfig{
		StoreURL:       storeURL,
		AccessToken:    accessToken,
		APIVersion:     ShopifyDefaultAPIVersion,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// IsComplete reports whether the credentials needed to call Shopify are present
func (c *ShopifyConfig) IsComplete() bool {
	return c != nil && strings.TrimSpace(c.StoreURL) != "" && strings.TrimSpace(c.AccessToken) != ""
}

// Validate validates the Shopify configuration and fills defaults
func (c *ShopifyConfig) Validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return ErrShopifyConfigMissingStoreURL
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrShopifyConfigMissingAccessToken
	}
	c.StoreURL = strings.TrimRight(strings.TrimSpace(c.StoreURL), "/")
	if !strings.HasPrefix(c.StoreURL, "http://") && !strings.HasPrefix(c.StoreURL, "https://") {
		c.StoreURL = "https://" + c.StoreURL
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// BaseURL returns the Admin API root for this store and version
func (c *ShopifyConfig) BaseURL() string {
	return fmt.Sprintf("%s/admin/api/%s", c.StoreURL, c.APIVersion)
}
