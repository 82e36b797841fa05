package ecommerce

import (
	"errors"
	"fmt"
	"strings"
)

// BigCommerceConfig holds configuration for the BigCommerce v3 REST API
type BigCommerceConfig struct {
	// StoreHash identifies the store in API paths
	StoreHash string
	// AccessToken is the API account access token
	AccessToken string
	// ClientID is the API account client ID
	ClientID string
	// ClientSecret is the API account client secret
	ClientSecret string
	// APIBaseURL is the API root without the store hash
	APIBaseURL string
	// LocationID overrides location discovery for inventory calls
	LocationID string
	// TimeoutSeconds is the per-call timeout
	TimeoutSeconds int
}

// BigCommerceProductionAPIURL is the production API root
const BigCommerceProductionAPIURL = "https://api.bigcommerce.com/stores"

// Errors for BigCommerce configuration
var (
	ErrBigCommerceConfigMissingStoreHash    = errors.New("bigcommerce: store hash is required")
	ErrBigCommerceConfigMissingAccessToken  = errors.New("bigcommerce: access token is required")
	ErrBigCommerceConfigMissingClientID     = errors.New("bigcommerce: client ID is required")
	ErrBigCommerceConfigMissingClientSecret = errors.New("bigcommerce: client secret is required")
)

// NewBigCommerceConfig creates a new BigCommerce configuration with defaults
func NewBigCommerceConfig(storeHash, accessToken, clientID, clientSecret string) *BigCommerceConfig {
	return &BigCommerceConfig{
		StoreHash:      storeHash,
		AccessToken:    accessToken,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		APIBaseURL:     BigCommerceProductionAPIURL,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// IsComplete reports whether all four credentials are present
func (c *BigCommerceConfig) IsComplete() bool {
	return c != nil && c.StoreHash != "" && c.AccessToken != "" && c.ClientID != "" && c.ClientSecret != ""
}

// Validate validates the BigCommerce configuration and fills defaults
func (c *BigCommerceConfig) Validate() error {
	if c.StoreHash == "" {
		return ErrBigCommerceConfigMissingStoreHash
	}
	if c.AccessToken == "" {
		return ErrBigCommerceConfigMissingAccessToken
	}
	if c.ClientID == "" {
		return ErrBigCommerceConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrBigCommerceConfigMissingClientSecret
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = BigCommerceProductionAPIURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// BaseURL returns the v3 API root for this store
func (c *BigCommerceConfig) BaseURL() string {
	return fmt.Sprintf("%s/%s/v3", c.APIBaseURL, c.StoreHash)
}
