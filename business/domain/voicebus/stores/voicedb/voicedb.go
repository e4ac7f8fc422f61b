// Package voicedb contains voice profile related database functionality.
package voicedb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voxgate/voxgate/business/domain/voicebus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Store manages the set of APIs for voice profile database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (voicebus.Storer, error) {
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

// Create inserts a new voice into the database.
func (s *Store) Create(ctx context.Context, voice voicebus.Voice) error {
	const q = `
	INSERT INTO voices
		(voice_id, tenant_id, name, language, gender, cloned, sample_ref, created_at)
	VALUES
		(:voice_id, :tenant_id, :name, :language, :gender, :cloned, :sample_ref, :created_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBVoice(voice)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing voices from the database.
func (s *Store) Query(ctx context.Context, filter voicebus.QueryFilter, orderBy order.By, page page.Page) ([]voicebus.Voice, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		voice_id, tenant_id, name, language, gender, cloned, sample_ref, created_at
	FROM
		voices`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbVoices []voiceDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbVoices); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusVoices(dbVoices)
}

// Count returns the total number of voices in the DB.
func (s *Store) Count(ctx context.Context, filter voicebus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		voices`

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

// QueryByID gets the specified voice from the database.
func (s *Store) QueryByID(ctx context.Context, voiceID uuid.UUID) (voicebus.Voice, error) {
	data := struct {
		ID uuid.UUID `db:"voice_id"`
	}{
		ID: voiceID,
	}

	const q = `
	SELECT
		voice_id, tenant_id, name, language, gender, cloned, sample_ref, created_at
	FROM
		voices
	WHERE
		voice_id = :voice_id`

	var dbVoice voiceDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbVoice); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return voicebus.Voice{}, fmt.Errorf("db: %w", voicebus.ErrNotFound)
		}
		return voicebus.Voice{}, fmt.Errorf("db: %w", err)
	}

	return toBusVoice(dbVoice)
}
