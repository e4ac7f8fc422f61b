package keydb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/order"
)

func applyFilter(filter keybus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["key_id"] = *filter.ID
		wc = append(wc, "key_id = :key_id")
	}

	if filter.TenantID != nil {
		data["tenant_id"] = *filter.TenantID
		wc = append(wc, "tenant_id = :tenant_id")
	}

	if filter.Revoked != nil {
		if *filter.Revoked {
			wc = append(wc, "revoked_at IS NOT NULL")
		} else {
			wc = append(wc, "revoked_at IS NULL")
		}
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}

var orderByFields = map[string]string{
	keybus.OrderByID:        "key_id",
	keybus.OrderByLabel:     "label",
	keybus.OrderByCreatedAt: "created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
