package drive

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
	accounts  []gateway.DriveAccount
	passwords map[int64]string
	deleted   []int64
}

func (s *stubBackend) DriveAccounts(ctx context.Context) ([]gateway.DriveAccount, error) {
	return s.accounts, nil
}

func (s *stubBackend) DriveAccountPassword(ctx context.Context, id int64) (string, error) {
	pw, ok := s.passwords[id]
	if !ok {
		return "", &gateway.Error{Kind: gateway.KindNotFound, Status: 404}
	}
	return pw, nil
}

func (s *stubBackend) CreateDriveAccount(ctx context.Context, in gateway.DriveAccountInput) (*gateway.DriveAccount, error) {
	acc := gateway.DriveAccount{ID: int64(len(s.accounts) + 1), Title: in.Title, Email: in.Email}
	s.accounts = append(s.accounts, acc)
	return &acc, nil
}

func (s *stubBackend) DeleteDriveAccount(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func secretary() *session.Session {
	return &session.Session{Token: "t", Identity: gateway.Profile{ID: 5, Roles: []gateway.Grant{
		{SectionID: membership.Tala2e3, RoleName: "Amin Ser"},
	}}}
}

func TestAccessIsGated(t *testing.T) {
	member := &session.Session{Token: "t", Identity: gateway.Profile{ID: 6}}
	vault := NewVault(member, &stubBackend{}, zerolog.Nop())
	ctx := context.Background()

	if _, err := vault.List(ctx, ""); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	if _, err := vault.Reveal(ctx, 1); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	if err := vault.Delete(ctx, 1); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestListSearchAndReveal(t *testing.T) {
	backend := &stubBackend{
		accounts: []gateway.DriveAccount{
			{ID: 1, Title: "Chabiba archive", Email: "chabiba@example.org"},
			{ID: 2, Title: "Photos", Email: "media@example.org"},
		},
		passwords: map[int64]string{2: "hunter2"},
	}
	vault := NewVault(secretary(), backend, zerolog.Nop())
	ctx := context.Background()

	got, err := vault.List(ctx, "MEDIA")
	if err != nil || len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("search by email: %+v %v", got, err)
	}
	got, _ = vault.List(ctx, "archive")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("search by title: %+v", got)
	}

	pw, err := vault.Reveal(ctx, 2)
	if err != nil || pw != "hunter2" {
		t.Fatalf("reveal: %q %v", pw, err)
	}
	if _, err := vault.Reveal(ctx, 9); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	backend := &stubBackend{}
	vault := NewVault(secretary(), backend, zerolog.Nop())
	ctx := context.Background()

	if _, err := vault.Create(ctx, "Backup", "not-an-email", "pw"); err == nil {
		t.Fatalf("invalid email accepted")
	}
	if _, err := vault.Create(ctx, "", "a@example.org", "pw"); err == nil {
		t.Fatalf("missing title accepted")
	}
	acc, err := vault.Create(ctx, " Backup ", "a@example.org", "pw")
	if err != nil || acc.Title != "Backup" {
		t.Fatalf("create: %+v %v", acc, err)
	}
	if err := vault.Delete(ctx, acc.ID); err != nil || len(backend.deleted) != 1 {
		t.Fatalf("delete: %v", err)
	}
}
