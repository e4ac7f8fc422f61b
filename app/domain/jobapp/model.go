package jobapp

import (
	"encoding/json"
	"time"

	"github.com/voxgate/voxgate/business/domain/jobbus"
)

// Job represents information about one unit of dispatched work.
type Job struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	InputRef      string `json:"inputRef,omitempty"`
	ResultRef     string `json:"resultRef,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	DateCreated   string `json:"dateCreated"`
	DateUpdated   string `json:"dateUpdated"`
	DateCompleted string `json:"dateCompleted,omitempty"`
}

// Encode implements the web.Encoder interface.
func (j Job) Encode() ([]byte, string, error) {
	data, err := json.Marshal(j)
	return data, "application/json", err
}

func toAppJob(bus jobbus.Job) Job {
	job := Job{
		ID:           bus.ID.String(),
		Kind:         bus.Kind.String(),
		Status:       bus.Status.String(),
		InputRef:     bus.InputRef,
		ResultRef:    bus.ResultRef,
		ErrorMessage: bus.ErrorMessage,
		DateCreated:  bus.CreatedAt.Format(time.RFC3339),
		DateUpdated:  bus.UpdatedAt.Format(time.RFC3339),
	}

	if bus.CompletedAt != nil {
		job.DateCompleted = bus.CompletedAt.Format(time.RFC3339)
	}

	return job
}

func toAppJobs(jobs []jobbus.Job) []Job {
	app := make([]Job, len(jobs))
	for i, job := range jobs {
		app[i] = toAppJob(job)
	}
	return app
}
