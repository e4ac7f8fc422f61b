package voicebus

import (
	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/sdk/order"
)

// QueryFilter holds the available fields a query can be filtered on.
// AvailableTo selects the union of stock voices and the given tenant's
// cloned voices.
type QueryFilter struct {
	ID          *uuid.UUID
	TenantID    *uuid.UUID
	AvailableTo *uuid.UUID
	Language    *string
	Cloned      *bool
}

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByName, order.ASC)

// Set of fields that the results can be ordered by.
const (
	OrderByID       = "voice_id"
	OrderByName     = "name"
	OrderByLanguage = "language"
)
