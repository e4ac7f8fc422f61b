package userbus_test

import (
	"context"
	"errors"
	"net/mail"
	"testing"

	"github.com/google/uuid"
	"github.com/voxgate/voxgate/business/domain/userbus"
	"github.com/voxgate/voxgate/business/sdk/order"
	"github.com/voxgate/voxgate/business/sdk/page"
	"github.com/voxgate/voxgate/business/sdk/sqldb"
	"github.com/voxgate/voxgate/business/types/name"
	"github.com/voxgate/voxgate/business/types/password"
	"github.com/voxgate/voxgate/business/types/role"
)

type fakeUserStore struct {
	users map[uuid.UUID]userbus.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]userbus.User)}
}

func (s *fakeUserStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

func (s *fakeUserStore) Create(ctx context.Context, usr userbus.User) error {
	for _, existing := range s.users {
		if existing.Email.Address == usr.Email.Address {
			return userbus.ErrUniqueEmail
		}
	}
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

func TestAuthenticate(t *testing.T) {
	core := userbus.NewCore(newFakeUserStore())
	ctx := context.Background()

	email := mail.Address{Address: "owner@acme.dev"}
	usr, err := core.Create(ctx, userbus.NewUser{
		TenantID: uuid.New(),
		Name:     name.MustParse("Acme Owner"),
		Email:    email,
		Role:     role.Owner,
		Password: password.MustParse("s3cret-pass"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := core.Authenticate(ctx, email, "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if got.ID != usr.ID {
		t.Errorf("expected user %s, got %s", usr.ID, got.ID)
	}
	if !got.Role.Equal(role.Owner) {
		t.Errorf("expected role OWNER, got %s", got.Role)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	core := userbus.NewCore(newFakeUserStore())
	ctx := context.Background()

	email := mail.Address{Address: "owner@acme.dev"}
	if _, err := core.Create(ctx, userbus.NewUser{
		TenantID: uuid.New(),
		Name:     name.MustParse("Acme Owner"),
		Email:    email,
		Role:     role.Owner,
		Password: password.MustParse("s3cret-pass"),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := core.Authenticate(ctx, email, "wrong-pass")
	if !errors.Is(err, userbus.ErrAuthenticationFailure) {
		t.Fatalf("expected ErrAuthenticationFailure, got %v", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	core := userbus.NewCore(newFakeUserStore())

	_, err := core.Authenticate(context.Background(), mail.Address{Address: "ghost@acme.dev"}, "whatever")
	if !errors.Is(err, userbus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_HashesPassword(t *testing.T) {
	core := userbus.NewCore(newFakeUserStore())

	usr, err := core.Create(context.Background(), userbus.NewUser{
		TenantID: uuid.New(),
		Name:     name.MustParse("Acme Owner"),
		Email:    mail.Address{Address: "owner@acme.dev"},
		Role:     role.Owner,
		Password: password.MustParse("s3cret-pass"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if string(usr.PasswordHash) == "s3cret-pass" {
		t.Error("password must never be stored in clear text")
	}
	if len(usr.PasswordHash) == 0 {
		t.Error("password hash should be set")
	}
	if !usr.Enabled {
		t.Error("new users start enabled")
	}
}
