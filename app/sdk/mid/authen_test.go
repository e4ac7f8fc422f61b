package mid_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/app/sdk/mid"
	"github.com/voxgate/voxgate/business/domain/keybus"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/sdk/web"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/role"
	"github.com/voxgate/voxgate/business/types/scope"
	"github.com/voxgate/voxgate/foundation/keystore"
	"github.com/voxgate/voxgate/foundation/logger"
)

const testIssuer = "https://voxgate.io/auth/"

type fakeUserStore struct {
	users map[uuid.UUID]userbus.User
}

func (s *fakeUserStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *fakeUserStore) Create(ctx context.Context, usr userbus.User) error {
	s.users[usr.ID] = usr
	return nil
}

func (s *fakeUserStore) Update(ctx context.Context, usr userbus.User) error {
	s.users[usr.ID] = usr
	return nil
}

func (s *fakeUserStore) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	var users []userbus.User
	for _, usr := range s.users {
		users = append(users, usr)
	}
	return users, nil
}

func (s *fakeUserStore) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return len(s.users), nil
}

func (s *fakeUserStore) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	usr, exists := s.users[userID]
	if !exists {
		return userbus.User{}, userbus.ErrNotFound
	}
	return usr, nil
}

func (s *fakeUserStore) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	for _, usr := range s.users {
		if usr.Email.Address == email.Address {
			return usr, nil
		}
	}
	return userbus.User{}, userbus.ErrNotFound
}

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
		if string(key.Digest) == string(digest) {
			return key, nil
		}
	}
	return keybus.Key{}, keybus.ErrNotFound
}

// =============================================================================

type fixture struct {
	auth   *auth.Auth
	keyBus *keybus.Core
	users  *fakeUserStore
	kid    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	block := pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	ks := keystore.New()
	kid := uuid.NewString()
	if err := ks.AddPrivateKey(kid, string(pem.EncodeToMemory(&block))); err != nil {
		t.Fatalf("adding private key: %v", err)
	}

	users := &fakeUserStore{users: make(map[uuid.UUID]userbus.User)}
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	a := auth.New(auth.Config{
		Log:       log,
		UserBus:   userbus.NewCore(users),
		KeyLookup: ks,
		Issuer:    testIssuer,
		ActiveKID: kid,
	})

	return &fixture{
		auth:   a,
		keyBus: keybus.NewCore(log, newFakeKeyStore()),
		users:  users,
		kid:    kid,
	}
}

func (f *fixture) seedUser(t *testing.T, tenantID uuid.UUID) (userbus.User, string) {
	t.Helper()

	usr := userbus.User{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name.MustParse("Test User"),
		Email:     mail.Address{Address: uuid.NewString() + "@example.com"},
		Role:      role.Developer,
		Enabled:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users.users[usr.ID] = usr

	token, err := f.auth.GenerateToken(f.kid, usr.TenantID, usr.ID, usr.Role)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	return usr, token
}

func (f *fixture) seedKey(t *testing.T, tenantID uuid.UUID, limit int) (keybus.Key, string) {
	t.Helper()

	key, secret, err := f.keyBus.Create(context.Background(), keybus.NewKey{
		TenantID:        tenantID,
		Label:           name.MustParse("test key"),
		Scopes:          []scope.Scope{scope.Synthesize},
		RateLimitPerMin: limit,
	})
	if err != nil {
		t.Fatalf("creating key: %v", err)
	}

	return key, secret
}

// resolve runs the request through Identify and captures the identity the
// handler would see. A nil error from the chain means the middleware let the
// request through.
func (f *fixture) resolve(t *testing.T, r *http.Request) (mid.Identity, web.Encoder) {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	var got mid.Identity
	next := func(ctx context.Context, r *http.Request) web.Encoder {
		id, err := mid.GetIdentity(ctx)
		if err != nil {
			t.Fatalf("identity missing from context: %v", err)
		}
		got = id
		return nil
	}

	resp := mid.Identify(log, f.auth, f.keyBus)(next)(r.Context(), r)
	return got, resp
}

// =============================================================================

func TestIdentify_KeyOnly(t *testing.T) {
	f := newFixture(t)
	tenantID := uuid.New()
	key, secret := f.seedKey(t, tenantID, 5)

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("X-API-Key", secret)

	id, resp := f.resolve(t, r)
	if resp != nil {
		t.Fatalf("expected pass through, got %v", resp)
	}

	if id.TenantID != tenantID {
		t.Errorf("expected tenant %s, got %s", tenantID, id.TenantID)
	}
	if id.KeyID == nil || *id.KeyID != key.ID {
		t.Errorf("expected key %s on identity, got %v", key.ID, id.KeyID)
	}
	if id.UserID != nil {
		t.Errorf("expected no user on identity, got %v", id.UserID)
	}
	if id.RateLimitPerMin != 5 {
		t.Errorf("expected rate limit override 5, got %d", id.RateLimitPerMin)
	}
}

func TestIdentify_BearerOnly(t *testing.T) {
	f := newFixture(t)
	tenantID := uuid.New()
	usr, token := f.seedUser(t, tenantID)

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	id, resp := f.resolve(t, r)
	if resp != nil {
		t.Fatalf("expected pass through, got %v", resp)
	}

	if id.TenantID != tenantID {
		t.Errorf("expected tenant %s, got %s", tenantID, id.TenantID)
	}
	if id.UserID == nil || *id.UserID != usr.ID {
		t.Errorf("expected user %s on identity, got %v", usr.ID, id.UserID)
	}
	if id.KeyID != nil {
		t.Errorf("expected no key on identity, got %v", id.KeyID)
	}
	if !id.HasScope(scope.Transcribe) {
		t.Error("expected bearer identity to carry every scope")
	}
}

func TestIdentify_BothSameTenant(t *testing.T) {
	f := newFixture(t)
	tenantID := uuid.New()
	usr, token := f.seedUser(t, tenantID)
	key, secret := f.seedKey(t, tenantID, 5)

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("X-API-Key", secret)

	id, resp := f.resolve(t, r)
	if resp != nil {
		t.Fatalf("expected pass through, got %v", resp)
	}

	if id.TenantID != tenantID {
		t.Errorf("expected tenant %s, got %s", tenantID, id.TenantID)
	}
	if id.UserID == nil || *id.UserID != usr.ID {
		t.Errorf("expected user %s on identity, got %v", usr.ID, id.UserID)
	}
	if id.KeyID == nil || *id.KeyID != key.ID {
		t.Errorf("expected key %s on identity, got %v", key.ID, id.KeyID)
	}
}

func TestIdentify_ForeignKeyDropped(t *testing.T) {
	f := newFixture(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	usr, token := f.seedUser(t, tenantA)
	_, secret := f.seedKey(t, tenantB, 5)

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("X-API-Key", secret)

	id, resp := f.resolve(t, r)
	if resp != nil {
		t.Fatalf("expected pass through, got %v", resp)
	}

	if id.TenantID != tenantA {
		t.Errorf("expected bearer tenant %s, got %s", tenantA, id.TenantID)
	}
	if id.UserID == nil || *id.UserID != usr.ID {
		t.Errorf("expected user %s on identity, got %v", usr.ID, id.UserID)
	}
	if id.KeyID != nil {
		t.Errorf("expected the other tenant's key to be dropped, got %v", *id.KeyID)
	}
	if id.RateLimitPerMin != 0 {
		t.Errorf("expected the other tenant's rate limit override to be dropped, got %d", id.RateLimitPerMin)
	}
}

func TestIdentify_RejectsNonCanonicalScheme(t *testing.T) {
	f := newFixture(t)
	_, token := f.seedUser(t, uuid.New())

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("Authorization", "bearer "+token)

	_, resp := f.resolve(t, r)
	if resp == nil {
		t.Fatal("expected a lowercase scheme to be rejected")
	}
}

func TestIdentify_InvalidKey(t *testing.T) {
	f := newFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/v1/synthesize", nil)
	r.Header.Set("X-API-Key", "vx_not_a_real_secret")

	_, resp := f.resolve(t, r)
	if resp == nil {
		t.Fatal("expected an unknown key to be rejected")
	}
}
