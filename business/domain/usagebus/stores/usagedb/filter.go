package usagedb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
)

func applyFilter(filter usagebus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.TenantID != nil {
		data["tenant_id"] = *filter.TenantID
		wc = append(wc, "tenant_id = :tenant_id")
	}

	if filter.KeyID != nil {
		data["key_id"] = *filter.KeyID
		wc = append(wc, "key_id = :key_id")
	}

	if filter.JobID != nil {
		data["job_id"] = *filter.JobID
		wc = append(wc, "job_id = :job_id")
	}

	if filter.Kind != nil {
		data["kind"] = filter.Kind.String()
		wc = append(wc, "kind = :kind")
	}

	if filter.StartCreatedDate != nil {
		data["start_created_at"] = filter.StartCreatedDate.UTC()
		wc = append(wc, "created_at >= :start_created_at")
	}

	if filter.EndCreatedDate != nil {
		data["end_created_at"] = filter.EndCreatedDate.UTC()
		wc = append(wc, "created_at <= :end_created_at")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}

var orderByFields = map[string]string{
	usagebus.OrderByCreatedAt: "created_at",
	usagebus.OrderByUnits:     "units",
	usagebus.OrderByKind:      "kind",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
