package keyapp

import (
	"net/http"

	"github.com/voxgate/voxgate/business/domain/keybus"
)

type queryParams struct {
	Page    string
	Rows    string
	OrderBy string
	Revoked string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:    values.Get("page"),
		Rows:    values.Get("rows"),
		OrderBy: values.Get("orderBy"),
		Revoked: values.Get("revoked"),
	}
}

func parseFilter(qp queryParams) (keybus.QueryFilter, error) {
	var filter keybus.QueryFilter

	if qp.Revoked != "" {
		revoked := qp.Revoked == "true"
		filter.Revoked = &revoked
	}

	return filter, nil
}

var orderByFields = map[string]string{
	"key_id":     keybus.OrderByID,
	"label":      keybus.OrderByLabel,
	"created_at": keybus.OrderByCreatedAt,
}
