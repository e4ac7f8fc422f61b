// Package keycache contains api key related CRUD functionality with caching.
// Digest lookups sit on the hot path of every keyed request, so they are
// served from an in-memory cache with a short TTL. Revocation invalidates the
// cached entry immediately for this process; other processes converge within
// the TTL.
package keycache

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/viccon/sturdyc"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
)

// Store manages the set of APIs for api key data and caching.
type Store struct {
	log    *logger.Logger
	storer keybus.Storer
	cache  *sturdyc.Client[keybus.Key]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer keybus.Storer, ttl time.Duration) *Store {
	const capacity = 10000
	const numShards = 10
	const evictionPercentage = 10

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[keybus.Key](capacity, numShards, ttl, evictionPercentage),
	}
}

// NewWithTx constructs a new Store value replacing the storer value with a
// storer value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (keybus.Storer, error) {
	return s.storer.NewWithTx(tx)
}

// Create inserts a new api key into the database.
func (s *Store) Create(ctx context.Context, key keybus.Key) error {
	if err := s.storer.Create(ctx, key); err != nil {
		return err
	}

	s.cache.Set(cacheKey(key.Digest), key)

	return nil
}

// Revoke stamps the revocation time on the specified key and drops it from
// the cache.
func (s *Store) Revoke(ctx context.Context, key keybus.Key) error {
	if err := s.storer.Revoke(ctx, key); err != nil {
		return err
	}

	s.cache.Delete(cacheKey(key.Digest))

	return nil
}

// UpdateLastUsed stamps the last-used time on the specified key.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID uuid.UUID, lastUsed time.Time) error {
	return s.storer.UpdateLastUsed(ctx, keyID, lastUsed)
}

// Query retrieves a list of existing keys from the database.
func (s *Store) Query(ctx context.Context, filter keybus.QueryFilter, orderBy order.By, page page.Page) ([]keybus.Key, error) {
	return s.storer.Query(ctx, filter, orderBy, page)
}

// Count returns the total number of keys in the DB.
func (s *Store) Count(ctx context.Context, filter keybus.QueryFilter) (int, error) {
	return s.storer.Count(ctx, filter)
}

// QueryByID gets the specified key from the database.
func (s *Store) QueryByID(ctx context.Context, keyID uuid.UUID) (keybus.Key, error) {
	return s.storer.QueryByID(ctx, keyID)
}

// QueryByDigest gets the key whose digest matches from the cache or falls
// back to the database.
func (s *Store) QueryByDigest(ctx context.Context, digest []byte) (keybus.Key, error) {
	if key, exists := s.cache.Get(cacheKey(digest)); exists {
		return key, nil
	}

	key, err := s.storer.QueryByDigest(ctx, digest)
	if err != nil {
		return keybus.Key{}, err
	}

	s.cache.Set(cacheKey(digest), key)

	return key, nil
}

func cacheKey(digest []byte) string {
	return hex.EncodeToString(digest)
}
