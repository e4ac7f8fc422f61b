package usageapp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/types/kind"
)

type queryParams struct {
	Page             string
	Rows             string
	OrderBy          string
	KeyID            string
	Kind             string
	StartCreatedDate string
	EndCreatedDate   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:             values.Get("page"),
		Rows:             values.Get("rows"),
		OrderBy:          values.Get("orderBy"),
		KeyID:            values.Get("key_id"),
		Kind:             values.Get("kind"),
		StartCreatedDate: values.Get("start_created_date"),
		EndCreatedDate:   values.Get("end_created_date"),
	}
}

func parseFilter(qp queryParams) (usagebus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter usagebus.QueryFilter

	if qp.KeyID != "" {
		id, err := uuid.Parse(qp.KeyID)
		switch err {
		case nil:
			filter.KeyID = &id
		default:
			fieldErrors.Add("key_id", err)
		}
	}

	if qp.Kind != "" {
		knd, err := kind.Parse(qp.Kind)
		switch err {
		case nil:
			filter.Kind = &knd
		default:
			fieldErrors.Add("kind", err)
		}
	}

	if qp.StartCreatedDate != "" {
		t, err := time.Parse(time.RFC3339, qp.StartCreatedDate)
		switch err {
		case nil:
			filter.StartCreatedDate = &t
		default:
			fieldErrors.Add("start_created_date", err)
		}
	}

	if qp.EndCreatedDate != "" {
		t, err := time.Parse(time.RFC3339, qp.EndCreatedDate)
		switch err {
		case nil:
			filter.EndCreatedDate = &t
		default:
			fieldErrors.Add("end_created_date", err)
		}
	}

	if fieldErrors != nil {
		return usagebus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}
