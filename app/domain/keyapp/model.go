package keyapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/errs"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/scope"
)

// =============================================================================
// Key (Output)
// =============================================================================

// Key represents information about an API key. The secret is never part of
// this model.
type Key struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Prefix          string   `json:"prefix"`
	Scopes          []string `json:"scopes"`
	RateLimitPerMin int      `json:"rateLimitPerMin,omitempty"`
	DateCreated     string   `json:"dateCreated"`
	LastUsed        string   `json:"lastUsed,omitempty"`
	Revoked         string   `json:"revoked,omitempty"`
}

// Encode implements the web.Encoder interface.
func (k Key) Encode() ([]byte, string, error) {
	data, err := json.Marshal(k)
	return data, "application/json", err
}

func toAppKey(bus keybus.Key) Key {
	key := Key{
		ID:              bus.ID.String(),
		Label:           bus.Label.String(),
		Prefix:          bus.Prefix,
		Scopes:          scope.ToStrings(bus.Scopes),
		RateLimitPerMin: bus.RateLimitPerMin,
		DateCreated:     bus.CreatedAt.Format(time.RFC3339),
	}

	if bus.LastUsedAt != nil {
		key.LastUsed = bus.LastUsedAt.Format(time.RFC3339)
	}

	if bus.RevokedAt != nil {
		key.Revoked = bus.RevokedAt.Format(time.RFC3339)
	}

	return key
}

func toAppKeys(keys []keybus.Key) []Key {
	app := make([]Key, len(keys))
	for i, key := range keys {
		app[i] = toAppKey(key)
	}
	return app
}

// CreatedKey is the one response that carries the clear text secret.
type CreatedKey struct {
	Key
	Secret string `json:"secret"`
}

// Encode implements the web.Encoder interface.
func (k CreatedKey) Encode() ([]byte, string, error) {
	data, err := json.Marshal(k)
	return data, "application/json", err
}

func toAppCreatedKey(bus keybus.Key, secret string) CreatedKey {
	return CreatedKey{
		Key:    toAppKey(bus),
		Secret: secret,
	}
}

// =============================================================================
// NewKey (Input)
// =============================================================================

// NewKey defines the data needed to mint an API key.
type NewKey struct {
	Label           string   `json:"label" validate:"required"`
	Scopes          []string `json:"scopes" validate:"required,min=1"`
	RateLimitPerMin int      `json:"rateLimitPerMin" validate:"omitempty,gte=1"`
}

// Decode implements the web.Decoder interface.
func (app *NewKey) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewKey) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewKey(tenantID uuid.UUID, app NewKey) (keybus.NewKey, error) {
	label, err := name.Parse(app.Label)
	if err != nil {
		return keybus.NewKey{}, fmt.Errorf("parse label: %w", err)
	}

	scopes, err := scope.ParseMany(app.Scopes)
	if err != nil {
		return keybus.NewKey{}, fmt.Errorf("parse scopes: %w", err)
	}

	return keybus.NewKey{
		TenantID:        tenantID,
		Label:           label,
		Scopes:          scopes,
		RateLimitPerMin: app.RateLimitPerMin,
	}, nil
}
