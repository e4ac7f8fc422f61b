package keybus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/scope"
)

// Key represents a machine credential belonging to exactly one tenant. The
// scope set is immutable after creation; only revocation changes the key's
// usable state.
type Key struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Label           name.Name
	Digest          []byte
	Prefix          string
	Scopes          []scope.Scope
	RateLimitPerMin int
	CreatedAt       time.Time
	LastUsedAt      *time.Time
	RevokedAt       *time.Time
}

// Revoked reports whether the key has been permanently disabled.
func (k Key) Revoked() bool {
	return k.RevokedAt != nil
}

// NewKey contains information needed to create a new key.
type NewKey struct {
	TenantID        uuid.UUID
	Label           name.Name
	Scopes          []scope.Scope
	RateLimitPerMin int
}
