package usageapp

import (
	"github.com/voxgate/voxgate/business/domain/usagebus"
)

var orderByFields = map[string]string{
	"created_at": usagebus.OrderByCreatedAt,
	"units":      usagebus.OrderByUnits,
	"kind":       usagebus.OrderByKind,
}
