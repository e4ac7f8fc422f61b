package tenantbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/types/name"
)

// Tenant represents a client organization in the system. Every other entity
// references exactly one tenant.
type Tenant struct {
	ID        uuid.UUID
	Name      name.Name
	Slug      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTenant contains information needed to create a new tenant.
type NewTenant struct {
	Name name.Name
	Slug string
}

// UpdateTenant contains information needed to update a tenant.
type UpdateTenant struct {
	Name    *name.Name
	Enabled *bool
}
