package keybus

import (
	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/sdk/order"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *uuid.UUID
	TenantID *uuid.UUID
	Revoked  *bool
}

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByID        = "key_id"
	OrderByLabel     = "label"
	OrderByCreatedAt = "created_at"
)
