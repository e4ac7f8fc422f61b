// Package jobdb contains job related database functionality.
package jobdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voxgate/voxgate/business/domain/jobbus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Store manages the set of APIs for job database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (jobbus.Storer, error) {
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

// Create inserts a new job into the database.
func (s *Store) Create(ctx context.Context, job jobbus.Job) error {
	const q = `
	INSERT INTO jobs
		(job_id, tenant_id, user_id, key_id, kind, status, input_ref, result_ref, error_message, created_at, updated_at, completed_at)
	VALUES
		(:job_id, :tenant_id, :user_id, :key_id, :kind, :status, :input_ref, :result_ref, :error_message, :created_at, :updated_at, :completed_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBJob(job)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a job in the database.
func (s *Store) Update(ctx context.Context, job jobbus.Job) error {
	const q = `
	UPDATE
		jobs
	SET
		status = :status,
		result_ref = :result_ref,
		error_message = :error_message,
		updated_at = :updated_at,
		completed_at = :completed_at
	WHERE
		job_id = :job_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBJob(job)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing jobs from the database.
func (s *Store) Query(ctx context.Context, filter jobbus.QueryFilter, orderBy order.By, page page.Page) ([]jobbus.Job, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		job_id, tenant_id, user_id, key_id, kind, status, input_ref, result_ref, error_message, created_at, updated_at, completed_at
	FROM
		jobs`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbJobs []jobDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbJobs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusJobs(dbJobs)
}

// Count returns the total number of jobs in the DB.
func (s *Store) Count(ctx context.Context, filter jobbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		jobs`

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

// QueryByID gets the specified job from the database.
func (s *Store) QueryByID(ctx context.Context, jobID uuid.UUID) (jobbus.Job, error) {
	data := struct {
		ID uuid.UUID `db:"job_id"`
	}{
		ID: jobID,
	}

	const q = `
	SELECT
		job_id, tenant_id, user_id, key_id, kind, status, input_ref, result_ref, error_message, created_at, updated_at, completed_at
	FROM
		jobs
	WHERE
		job_id = :job_id`

	var dbJob jobDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbJob); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return jobbus.Job{}, fmt.Errorf("db: %w", jobbus.ErrNotFound)
		}
		return jobbus.Job{}, fmt.Errorf("db: %w", err)
	}

	return toBusJob(dbJob)
}
