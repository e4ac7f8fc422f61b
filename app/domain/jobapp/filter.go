package jobapp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/types/kind"
)

type queryParams struct {
	Page             string
	Rows             string
	OrderBy          string
	ID               string
	Kind             string
	Status           string
	StartCreatedDate string
	EndCreatedDate   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:             values.Get("page"),
		Rows:             values.Get("rows"),
		OrderBy:          values.Get("orderBy"),
		ID:               values.Get("job_id"),
		Kind:             values.Get("kind"),
		Status:           values.Get("status"),
		StartCreatedDate: values.Get("start_created_date"),
		EndCreatedDate:   values.Get("end_created_date"),
	}
}

func parseFilter(qp queryParams) (jobbus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter jobbus.QueryFilter

	if qp.ID != "" {
		id, err := uuid.Parse(qp.ID)
		switch err {
		case nil:
			filter.ID = &id
		default:
			fieldErrors.Add("job_id", err)
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

	if qp.Status != "" {
		status, err := jobbus.ParseStatus(qp.Status)
		switch err {
		case nil:
			filter.Status = &status
		default:
			fieldErrors.Add("status", err)
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
		return jobbus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}

var orderByFields = map[string]string{
	"job_id":     jobbus.OrderByID,
	"status":     jobbus.OrderByStatus,
	"kind":       jobbus.OrderByKind,
	"created_at": jobbus.OrderByCreatedAt,
}
