package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"io"
	"net/mail"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/app/sdk/auth"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/role"
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

func newTestAuth(t *testing.T) (*auth.Auth, *fakeUserStore, string) {
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

	store := &fakeUserStore{users: make(map[uuid.UUID]userbus.User)}
	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	a := auth.New(auth.Config{
		Log:       log,
		UserBus:   userbus.NewCore(store),
		KeyLookup: ks,
		Issuer:    testIssuer,
	})

	return a, store, kid
}

func seedUser(store *fakeUserStore, tenantID uuid.UUID, r role.Role, enabled bool) userbus.User {
	usr := userbus.User{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name.MustParse("Test User"),
		Email:     mail.Address{Address: "user@example.com"},
		Role:      r,
		Enabled:   enabled,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	store.users[usr.ID] = usr
	return usr
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	a, store, kid := newTestAuth(t)
	tenantID := uuid.New()
	usr := seedUser(store, tenantID, role.Owner, true)

	token, err := a.GenerateToken(kid, tenantID, usr.ID, role.Owner)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, gotUsr, err := a.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if claims.Subject != usr.ID.String() {
		t.Errorf("expected subject %s, got %s", usr.ID, claims.Subject)
	}
	if claims.TenantID != tenantID.String() {
		t.Errorf("expected tenant %s, got %s", tenantID, claims.TenantID)
	}
	if claims.Role != role.Owner.String() {
		t.Errorf("expected role OWNER, got %s", claims.Role)
	}
	if gotUsr.ID != usr.ID {
		t.Errorf("expected user %s, got %s", usr.ID, gotUsr.ID)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	a, store, kid := newTestAuth(t)
	tenantID := uuid.New()
	usr := seedUser(store, tenantID, role.Owner, true)

	token, err := a.GenerateToken(kid, tenantID, usr.ID, role.Owner)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	// Missing the Bearer scheme entirely.
	if _, _, err := a.Authenticate(context.Background(), token); err == nil {
		t.Fatal("token without Bearer scheme should fail")
	}

	if _, _, err := a.Authenticate(context.Background(), "Basic "+token); err == nil {
		t.Fatal("wrong scheme should fail")
	}
}

func TestAuthenticate_TenantMismatch(t *testing.T) {
	a, store, kid := newTestAuth(t)
	usr := seedUser(store, uuid.New(), role.Owner, true)

	// Token minted for a different tenant than the user's record.
	token, err := a.GenerateToken(kid, uuid.New(), usr.ID, role.Owner)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	_, _, err = a.Authenticate(context.Background(), "Bearer "+token)
	if !errors.Is(err, auth.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
}

func TestAuthenticate_DisabledUser(t *testing.T) {
	a, store, kid := newTestAuth(t)
	tenantID := uuid.New()
	usr := seedUser(store, tenantID, role.Owner, false)

	token, err := a.GenerateToken(kid, tenantID, usr.ID, role.Owner)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	_, _, err = a.Authenticate(context.Background(), "Bearer "+token)
	if !errors.Is(err, auth.ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	a, _, kid := newTestAuth(t)

	token, err := a.GenerateToken(kid, uuid.New(), uuid.New(), role.Owner)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	if _, _, err := a.Authenticate(context.Background(), "Bearer "+token); err == nil {
		t.Fatal("token for an unknown subject should fail")
	}
}

func TestAuthorize(t *testing.T) {
	a, _, _ := newTestAuth(t)
	ctx := context.Background()

	claims := auth.Claims{Role: role.Developer.String()}

	if err := a.Authorize(ctx, claims, role.Owner, role.Admin, role.Developer); err != nil {
		t.Errorf("developer should be allowed: %v", err)
	}

	if err := a.Authorize(ctx, claims, role.Owner, role.Admin); err == nil {
		t.Error("developer should not pass an owner/admin gate")
	}

	// No allowed roles means nobody passes.
	if err := a.Authorize(ctx, claims); err == nil {
		t.Error("empty role list should reject everyone")
	}
}
