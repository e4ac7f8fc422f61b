package speechapp

import (
	"github.com/voxgate/voxgate/business/domain/voicebus"
)

var orderByFields = map[string]string{
	"voice_id": voicebus.OrderByID,
	"name":     voicebus.OrderByName,
	"language": voicebus.OrderByLanguage,
}
