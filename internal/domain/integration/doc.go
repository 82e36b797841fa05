// Package integration contains the storefront integration bounded context.
// This context describes how a local product is mirrored to external storefronts.
//
// Key concepts:
//   - Storefront: Port interface for a storefront platform (Shopify, BigCommerce)
//   - Listing: Platform-neutral description of a product as submitted by the seller
//   - RemoteProduct: Normalized view of a product as it exists on a platform (the mirror)
//   - Mapping rules: Variant expansion, options, description, tags, handle and image selection
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
