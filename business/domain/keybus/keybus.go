// Package keybus provides business access to the API key domain. An API key
// is a machine credential: the secret is handed out exactly once at creation
// and only its SHA-256 digest is ever persisted.
package keybus

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/foundation/logger"
	"github.com/voxgate/voxgate/foundation/otel"
)

// secretPrefix identifies a key secret at a glance without revealing it.
const secretPrefix = "vx_"

var (
	ErrNotFound = errors.New("api key not found")
	ErrRevoked  = errors.New("api key is revoked")
)

// Storer defines the behavior required by the keybus to interact with the
// database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, key Key) error
	Revoke(ctx context.Context, key Key) error
	UpdateLastUsed(ctx context.Context, keyID uuid.UUID, lastUsed time.Time) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Key, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, keyID uuid.UUID) (Key, error)
	QueryByDigest(ctx context.Context, digest []byte) (Key, error)
}

// Core manages the set of APIs for api key access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a core for api key access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
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

	return NewCore(c.log, storer), nil
}

// Create mints a new api key. The clear text secret is returned alongside the
// key record and is not recoverable afterwards.
func (c *Core) Create(ctx context.Context, nk NewKey) (Key, string, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.create")
	defer span.End()

	secret, err := generateSecret()
	if err != nil {
		return Key{}, "", fmt.Errorf("generate secret: %w", err)
	}

	digest := Digest(secret)

	key := Key{
		ID:              uuid.New(),
		TenantID:        nk.TenantID,
		Label:           nk.Label,
		Digest:          digest,
		Prefix:          secret[:len(secretPrefix)+4],
		Scopes:          nk.Scopes,
		RateLimitPerMin: nk.RateLimitPerMin,
		CreatedAt:       time.Now(),
	}

	if err := c.storer.Create(ctx, key); err != nil {
		return Key{}, "", fmt.Errorf("create: %w", err)
	}

	return key, secret, nil
}

// Authenticate resolves a clear text secret to its key record. Revoked keys
// fail regardless of digest correctness. On success the last-used time is
// stamped on a fire-and-forget basis so a storage hiccup there can never fail
// the request.
func (c *Core) Authenticate(ctx context.Context, secret string) (Key, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.authenticate")
	defer span.End()

	key, err := c.storer.QueryByDigest(ctx, Digest(secret))
	if err != nil {
		return Key{}, fmt.Errorf("query by digest: %w", err)
	}

	if key.Revoked() {
		return Key{}, ErrRevoked
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.storer.UpdateLastUsed(ctx, key.ID, time.Now()); err != nil {
			c.log.Error(ctx, "keybus: stamp last used", "key_id", key.ID, "err", err)
		}
	}()

	return key, nil
}

// Revoke permanently disables the specified key. Revocation is terminal.
func (c *Core) Revoke(ctx context.Context, key Key) (Key, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.revoke")
	defer span.End()

	if key.Revoked() {
		return key, nil
	}

	now := time.Now()
	key.RevokedAt = &now

	if err := c.storer.Revoke(ctx, key); err != nil {
		return Key{}, fmt.Errorf("revoke: %w", err)
	}

	return key, nil
}

// Query retrieves a list of existing keys.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]Key, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.query")
	defer span.End()

	keys, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return keys, nil
}

// Count returns the total number of keys.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds the key by the specified ID.
func (c *Core) QueryByID(ctx context.Context, keyID uuid.UUID) (Key, error) {
	ctx, span := otel.AddSpan(ctx, "business.keybus.queryByID")
	defer span.End()

	key, err := c.storer.QueryByID(ctx, keyID)
	if err != nil {
		return Key{}, fmt.Errorf("query: keyID[%s]: %w", keyID, err)
	}

	return key, nil
}

// Digest computes the persisted form of a secret.
func Digest(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

func generateSecret() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return secretPrefix + hex.EncodeToString(raw), nil
}
