// Package usagedb contains usage ledger related database functionality.
package usagedb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/voxgate/voxgate/business/domain/usagebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Store manages the set of APIs for usage ledger database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (usagebus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new usage record into the database. There is no update or
// delete: the ledger is append-only.
func (s *Store) Create(ctx context.Context, rec usagebus.Record) error {
	const q = `
	INSERT INTO usage_records
		(record_id, tenant_id, key_id, job_id, kind, units, metadata, created_at)
	VALUES
		(:record_id, :tenant_id, :key_id, :job_id, :kind, :units, :metadata, :created_at)`

	dbRec, err := toDBRecord(rec)
	if err != nil {
		return fmt.Errorf("todbrecord: %w", err)
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbRec); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing usage records from the database.
func (s *Store) Query(ctx context.Context, filter usagebus.QueryFilter, orderBy order.By, page page.Page) ([]usagebus.Record, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		record_id, tenant_id, key_id, job_id, kind, units, metadata, created_at
	FROM
		usage_records`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbRecs []recordDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbRecs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusRecords(dbRecs)
}

// Count returns the total number of usage records in the DB.
func (s *Store) Count(ctx context.Context, filter usagebus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		usage_records`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return count.Count, nil
}

// SumUnits totals the billable units matching the filter.
func (s *Store) SumUnits(ctx context.Context, filter usagebus.QueryFilter) (float64, error) {
	data := map[string]any{}

	const q = `
	SELECT
		COALESCE(SUM(units), 0) AS total
	FROM
		usage_records`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var total struct {
		Total float64 `db:"total"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &total); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return total.Total, nil
}
