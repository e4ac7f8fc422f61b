package speechapp

import (
	"net/http"

	"github.com/voxgate/voxgate/business/domain/voicebus"
)

type queryParams struct {
	Page     string
	Rows     string
	OrderBy  string
	Language string
	Cloned   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:     values.Get("page"),
		Rows:     values.Get("rows"),
		OrderBy:  values.Get("orderBy"),
		Language: values.Get("language"),
		Cloned:   values.Get("cloned"),
	}
}

func parseFilter(qp queryParams) (voicebus.QueryFilter, error) {
	var filter voicebus.QueryFilter

	if qp.Language != "" {
		lang := qp.Language
		filter.Language = &lang
	}

	if qp.Cloned != "" {
		cloned := qp.Cloned == "true"
		filter.Cloned = &cloned
	}

	return filter, nil
}
