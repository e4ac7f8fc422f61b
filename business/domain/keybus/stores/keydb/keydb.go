// Package keydb contains api key related CRUD functionality.
package keydb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Store manages the set of APIs for api key database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (keybus.Storer, error) {
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

// Create inserts a new api key into the database.
func (s *Store) Create(ctx context.Context, key keybus.Key) error {
	const q = `
	INSERT INTO api_keys
		(key_id, tenant_id, label, digest, prefix, scopes, rate_limit_per_min, created_at, last_used_at, revoked_at)
	VALUES
		(:key_id, :tenant_id, :label, :digest, :prefix, :scopes, :rate_limit_per_min, :created_at, :last_used_at, :revoked_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBKey(key)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Revoke stamps the revocation time on the specified key.
func (s *Store) Revoke(ctx context.Context, key keybus.Key) error {
	const q = `
	UPDATE
		api_keys
	SET
		revoked_at = :revoked_at
	WHERE
		key_id = :key_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBKey(key)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// UpdateLastUsed stamps the last-used time on the specified key.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID uuid.UUID, lastUsed time.Time) error {
	data := struct {
		ID       uuid.UUID `db:"key_id"`
		LastUsed time.Time `db:"last_used_at"`
	}{
		ID:       keyID,
		LastUsed: lastUsed.UTC(),
	}

	const q = `
	UPDATE
		api_keys
	SET
		last_used_at = :last_used_at
	WHERE
		key_id = :key_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing keys from the database.
func (s *Store) Query(ctx context.Context, filter keybus.QueryFilter, orderBy order.By, page page.Page) ([]keybus.Key, error) {
	data := map[string]any{
		"offset":        (page.Number() - 1) * page.RowsPerPage(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		key_id, tenant_id, label, digest, prefix, scopes, rate_limit_per_min, created_at, last_used_at, revoked_at
	FROM
		api_keys`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbKeys []keyDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbKeys); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusKeys(dbKeys)
}

// Count returns the total number of keys in the DB.
func (s *Store) Count(ctx context.Context, filter keybus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1) AS count
	FROM
		api_keys`

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

// QueryByID gets the specified key from the database.
func (s *Store) QueryByID(ctx context.Context, keyID uuid.UUID) (keybus.Key, error) {
	data := struct {
		ID uuid.UUID `db:"key_id"`
	}{
		ID: keyID,
	}

	const q = `
	SELECT
		key_id, tenant_id, label, digest, prefix, scopes, rate_limit_per_min, created_at, last_used_at, revoked_at
	FROM
		api_keys
	WHERE
		key_id = :key_id`

	var dbKey keyDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbKey); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return keybus.Key{}, fmt.Errorf("db: %w", keybus.ErrNotFound)
		}
		return keybus.Key{}, fmt.Errorf("db: %w", err)
	}

	return toBusKey(dbKey)
}

// QueryByDigest gets the key whose digest matches.
func (s *Store) QueryByDigest(ctx context.Context, digest []byte) (keybus.Key, error) {
	data := struct {
		Digest []byte `db:"digest"`
	}{
		Digest: digest,
	}

	const q = `
	SELECT
		key_id, tenant_id, label, digest, prefix, scopes, rate_limit_per_min, created_at, last_used_at, revoked_at
	FROM
		api_keys
	WHERE
		digest = :digest`

	var dbKey keyDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbKey); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return keybus.Key{}, fmt.Errorf("db: %w", keybus.ErrNotFound)
		}
		return keybus.Key{}, fmt.Errorf("db: %w", err)
	}

	return toBusKey(dbKey)
}
