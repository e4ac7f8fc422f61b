package voicedb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/sdk/order"
)

func applyFilter(filter voicebus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["voice_id"] = *filter.ID
		wc = append(wc, "voice_id = :voice_id")
	}

	if filter.TenantID != nil {
		data["tenant_id"] = *filter.TenantID
		wc = append(wc, "tenant_id = :tenant_id")
	}

	if filter.AvailableTo != nil {
		data["available_to"] = *filter.AvailableTo
		wc = append(wc, "(tenant_id IS NULL OR tenant_id = :available_to)")
	}

	if filter.Language != nil {
		data["language"] = *filter.Language
		wc = append(wc, "language = :language")
	}

	if filter.Cloned != nil {
		data["cloned"] = *filter.Cloned
		wc = append(wc, "cloned = :cloned")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}

var orderByFields = map[string]string{
	voicebus.OrderByID:       "voice_id",
	voicebus.OrderByName:     "name",
	voicebus.OrderByLanguage: "language",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
