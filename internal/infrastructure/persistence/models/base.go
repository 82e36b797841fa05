package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/shared"
)

// OwnedModel holds the key, timestamps and owning seller shared by every
// table. The owner column keeps its historical name user_id.
type OwnedModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	OwnerID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
}

// ToOwnedEntity rebuilds the domain identity fields
func (m *OwnedModel) ToOwnedEntity() shared.OwnedEntity {
	return shared.OwnedEntity{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		OwnerID:    m.OwnerID,
	}
}

// FromDomainOwnedEntity copies the domain identity fields in
func (m *OwnedModel) FromDomainOwnedEntity(e shared.OwnedEntity) {
	m.ID, m.OwnerID = e.ID, e.OwnerID
	m.CreatedAt, m.UpdatedAt = e.CreatedAt, e.UpdatedAt
}
