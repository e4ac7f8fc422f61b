package keybus_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/logger"
)

type fakeKeyStore struct {
	mu   sync.Mutex
	keys map[uuid.UUID]keybus.Key
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: make(map[uuid.UUID]keybus.Key)}
}

func (s *fakeKeyStore) NewWithTx(tx sqldb.CommitRollbacker) (keybus.Storer, error) {
	return s, nil
}

func (s *fakeKeyStore) Create(ctx context.Context, key keybus.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *fakeKeyStore) Revoke(ctx context.Context, key keybus.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *fakeKeyStore) UpdateLastUsed(ctx context.Context, keyID uuid.UUID, lastUsed time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.keys[keyID]
	if !exists {
		return keybus.ErrNotFound
	}
	key.LastUsedAt = &lastUsed
	s.keys[keyID] = key
	return nil
}

func (s *fakeKeyStore) Query(ctx context.Context, filter keybus.QueryFilter, orderBy order.By, page page.Page) ([]keybus.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []keybus.Key
	for _, key := range s.keys {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *fakeKeyStore) Count(ctx context.Context, filter keybus.QueryFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys), nil
}

func (s *fakeKeyStore) QueryByID(ctx context.Context, keyID uuid.UUID) (keybus.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.keys[keyID]
	if !exists {
		return keybus.Key{}, keybus.ErrNotFound
	}
	return key, nil
}

func (s *fakeKeyStore) QueryByDigest(ctx context.Context, digest []byte) (keybus.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys {
		if bytes.Equal(key.Digest, digest) {
			return key, nil
		}
	}
	return keybus.Key{}, keybus.ErrNotFound
}

func newTestCore(t *testing.T) (*keybus.Core, *fakeKeyStore) {
	t.Helper()
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)
	store := newFakeKeyStore()
	return keybus.NewCore(log, store), store
}

func TestCreate_SecretShape(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	key, secret, err := core.Create(ctx, keybus.NewKey{
		TenantID: uuid.New(),
		Label:    name.MustParse("backend"),
		Scopes:   []scope.Scope{scope.Synthesize},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !strings.HasPrefix(secret, "vx_") {
		t.Errorf("secret should carry the vx_ prefix, got %q", secret)
	}

	if !bytes.Equal(key.Digest, keybus.Digest(secret)) {
		t.Error("persisted digest should match the digest of the secret")
	}

	if !strings.HasPrefix(secret, key.Prefix) {
		t.Errorf("display prefix %q should be a prefix of the secret", key.Prefix)
	}

	if key.Revoked() {
		t.Error("fresh key should not be revoked")
	}
}

func TestAuthenticate(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()
	tenantID := uuid.New()

	key, secret, err := core.Create(ctx, keybus.NewKey{
		TenantID: tenantID,
		Label:    name.MustParse("backend"),
		Scopes:   []scope.Scope{scope.Synthesize, scope.Transcribe},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := core.Authenticate(ctx, secret)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if got.ID != key.ID {
		t.Errorf("expected key %s, got %s", key.ID, got.ID)
	}

	if got.TenantID != tenantID {
		t.Errorf("expected tenant %s, got %s", tenantID, got.TenantID)
	}
}

func TestAuthenticate_UnknownSecret(t *testing.T) {
	core, _ := newTestCore(t)

	if _, err := core.Authenticate(context.Background(), "vx_does_not_exist"); err == nil {
		t.Fatal("unknown secret should fail authentication")
	}
}

func TestAuthenticate_Revoked(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	key, secret, err := core.Create(ctx, keybus.NewKey{
		TenantID: uuid.New(),
		Label:    name.MustParse("backend"),
		Scopes:   []scope.Scope{scope.Synthesize},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := core.Revoke(ctx, key); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	if _, err := core.Authenticate(ctx, secret); !errors.Is(err, keybus.ErrRevoked) {
		t.Fatalf("expected ErrRevoked, got %v", err)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	key, _, err := core.Create(ctx, keybus.NewKey{
		TenantID: uuid.New(),
		Label:    name.MustParse("backend"),
		Scopes:   []scope.Scope{scope.Synthesize},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	revoked, err := core.Revoke(ctx, key)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	again, err := core.Revoke(ctx, revoked)
	if err != nil {
		t.Fatalf("second revoke failed: %v", err)
	}

	if !again.RevokedAt.Equal(*revoked.RevokedAt) {
		t.Error("second revoke should not move the revocation time")
	}
}
