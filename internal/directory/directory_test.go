package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
)

type stubBackend struct {
	users   []membership.User
	created []gateway.NewUser
	deleted []int64
	shops   []gateway.Shop
}

func (s *stubBackend) Users(ctx context.Context) ([]membership.User, error) { return s.users, nil }

func (s *stubBackend) CreateUser(ctx context.Context, in gateway.NewUser) error {
	s.created = append(s.created, in)
	return nil
}

func (s *stubBackend) DeleteUser(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBackend) Shops(ctx context.Context) ([]gateway.Shop, error) { return s.shops, nil }

func (s *stubBackend) CreateShop(ctx context.Context, in gateway.ShopInput) (*gateway.Shop, error) {
	shop := gateway.Shop{ID: int64(len(s.shops) + 1), Name: in.Name}
	s.shops = append(s.shops, shop)
	return &shop, nil
}

func TestUsersFilterBySection(t *testing.T) {
	backend := &stubBackend{users: []membership.User{
		{ID: 1, Name: "A", Sections: []membership.SectionMembership{{ID: membership.Forsan}}},
		{ID: 2, Name: "B"},
	}}
	dir := New(&session.Session{Token: "t"}, backend, zerolog.Nop())

	all, _ := dir.Users(context.Background(), 0)
	forsan, _ := dir.Users(context.Background(), membership.Forsan)
	if len(all) != 2 || len(forsan) != 1 || forsan[0].ID != 1 {
		t.Fatalf("unexpected users: %v / %v", all, forsan)
	}
}

func TestCreateUserPermissions(t *testing.T) {
	backend := &stubBackend{}
	president := &session.Session{Token: "t", Identity: gateway.Profile{ID: 3, RoleID: 2}}
	member := &session.Session{Token: "t", Identity: gateway.Profile{ID: 4}}
	ctx := context.Background()
	in := gateway.NewUser{Name: "Nadim", Email: "nadim@example.org", Password: "Secret123!"}

	if err := New(member, backend, zerolog.Nop()).CreateUser(ctx, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	dir := New(president, backend, zerolog.Nop())
	admin := in
	admin.IsGlobalAdmin = true
	if err := dir.CreateUser(ctx, admin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("only global admins create global admins, got %v", err)
	}
	short := in
	short.Password = "short"
	if err := dir.CreateUser(ctx, short); err == nil {
		t.Fatalf("short password accepted")
	}
	if err := dir.CreateUser(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(backend.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(backend.created))
	}

	if err := dir.DeleteUser(ctx, 3); err == nil {
		t.Fatalf("self deletion accepted")
	}
	if err := dir.DeleteUser(ctx, 9); err != nil || backend.deleted[0] != 9 {
		t.Fatalf("delete: %v", err)
	}
}

func TestShopsSortedByName(t *testing.T) {
	backend := &stubBackend{shops: []gateway.Shop{{ID: 1, Name: "zaatar corner"}, {ID: 2, Name: "Bakery"}}}
	dir := New(&session.Session{Token: "t"}, backend, zerolog.Nop())

	shops, err := dir.Shops(context.Background())
	if err != nil || shops[0].Name != "Bakery" {
		t.Fatalf("unexpected shops %v %v", shops, err)
	}
	if _, err := dir.CreateShop(context.Background(), gateway.ShopInput{Name: " "}); err == nil {
		t.Fatalf("blank shop name accepted")
	}
}
