// Package voicebus provides business access to the voice profile domain.
// Stock voices carry no tenant and are visible to everyone; cloned voices
// belong to the tenant that created them.
package voicebus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/otel"
)

var ErrNotFound = errors.New("voice not found")

// Storer defines the behavior required by the voicebus to interact with the
// database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, voice Voice) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Voice, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, voiceID uuid.UUID) (Voice, error)
}

// Core manages the set of APIs for voice profile access.
type Core struct {
	storer Storer
}

// NewCore constructs a core for voice profile access.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new Core value replacing the Storer value with a
// Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create registers a cloned voice for a tenant.
func (c *Core) Create(ctx context.Context, nv NewVoice) (Voice, error) {
	ctx, span := otel.AddSpan(ctx, "business.voicebus.create")
	defer span.End()

	now := time.Now()

	voice := Voice{
		ID:        uuid.New(),
		TenantID:  &nv.TenantID,
		Name:      nv.Name,
		Language:  nv.Language,
		Gender:    nv.Gender,
		Cloned:    true,
		SampleRef: nv.SampleRef,
		CreatedAt: now,
	}

	if err := c.storer.Create(ctx, voice); err != nil {
		return Voice{}, fmt.Errorf("create: %w", err)
	}

	return voice, nil
}

// Query retrieves a list of existing voices.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Voice, error) {
	ctx, span := otel.AddSpan(ctx, "business.voicebus.query")
	defer span.End()

	voices, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return voices, nil
}

// Count returns the total number of voices.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.voicebus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the voice by the specified ID.
func (c *Core) QueryByID(ctx context.Context, voiceID uuid.UUID) (Voice, error) {
	ctx, span := otel.AddSpan(ctx, "business.voicebus.queryByID")
	defer span.End()

	voice, err := c.storer.QueryByID(ctx, voiceID)
	if err != nil {
		return Voice{}, fmt.Errorf("query: voiceID[%s]: %w", voiceID, err)
	}

	return voice, nil
}
