package modelapp

import (
	"encoding/json"

	"github.com/voxgate/voxgate/foundation/mlclient"
)

// Service describes the state of one inference service.
type Service struct {
	Status string           `json:"status"`
	Detail string           `json:"detail,omitempty"`
	Models []map[string]any `json:"models,omitempty"`
}

// ModelStatus aggregates both inference services.
type ModelStatus struct {
	TTS Service `json:"tts"`
	STT Service `json:"stt"`
}

// Encode implements the web.Encoder interface.
func (m ModelStatus) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

func toAppService(status mlclient.ServiceStatus, err error) Service {
	if err != nil {
		return Service{
			Status: "unreachable",
			Detail: "service did not respond",
		}
	}

	return Service{
		Status: status.Status,
		Detail: status.Detail,
		Models: status.Models,
	}
}
