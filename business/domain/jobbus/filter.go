package jobbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/types/kind"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID               *uuid.UUID
	TenantID         *uuid.UUID
	KeyID            *uuid.UUID
	Kind             *kind.Kind
	Status           *Status
	StartCreatedDate *time.Time
	EndCreatedDate   *time.Time
}

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByID        = "job_id"
	OrderByStatus    = "status"
	OrderByKind      = "kind"
	OrderByCreatedAt = "created_at"
)
