// Package models holds the GORM rows behind the catalog repositories.
//
// ProductModel maps the items table and keeps platform links as JSON text.
// ComboModel maps combos with its components in a JSON column. Each model
// converts to and from its domain aggregate with ToDomain and a FromDomain
// constructor, so GORM tags never reach internal/domain.
package models
