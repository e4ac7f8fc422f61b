// Package usagebus provides business access to the usage ledger. Records are
// append-only facts: they are written exactly once per billable job outcome
// and never mutated or deleted.
package usagebus

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

var ErrNegativeUnits = errors.New("units must not be negative")

// Storer defines the behavior required by the usagebus to interact with the
// database. There is deliberately no update or delete.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, rec Record) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Record, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	SumUnits(ctx context.Context, filter QueryFilter) (float64, error)
}

// Core manages the set of APIs for usage ledger access.
type Core struct {
	storer Storer
}

// NewCore constructs a core for usage ledger access.
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

// Append writes one immutable usage record. A storage fault propagates to the
// caller, which decides whether the surrounding job survives it.
func (c *Core) Append(ctx context.Context, nr NewRecord) (Record, error) {
	ctx, span := otel.AddSpan(ctx, "business.usagebus.append")
	defer span.End()

	if nr.Units < 0 {
		return Record{}, ErrNegativeUnits
	}

	rec := Record{
		ID:        uuid.New(),
		TenantID:  nr.TenantID,
		KeyID:     nr.KeyID,
		JobID:     nr.JobID,
		Kind:      nr.Kind,
		Units:     nr.Units,
		Metadata:  nr.Metadata,
		CreatedAt: time.Now(),
	}

	if err := c.storer.Create(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("create: %w", err)
	}

	return rec, nil
}

// Query retrieves a list of existing usage records.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Record, error) {
	ctx, span := otel.AddSpan(ctx, "business.usagebus.query")
	defer span.End()

	recs, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return recs, nil
}

// Count returns the total number of usage records.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.usagebus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// SumUnits totals the billable units matching the filter.
func (c *Core) SumUnits(ctx context.Context, filter QueryFilter) (float64, error) {
	ctx, span := otel.AddSpan(ctx, "business.usagebus.sumUnits")
	defer span.End()

	return c.storer.SumUnits(ctx, filter)
}
