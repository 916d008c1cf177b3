// Package directory covers the user accounts and shop listings screens.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

var ErrForbidden = errors.New("you are not allowed to manage users")

// Backend is the slice of the gateway used by the directory.
type Backend interface {
	Users(ctx context.Context) ([]membership.User, error)
	CreateUser(ctx context.Context, in gateway.NewUser) error
	DeleteUser(ctx context.Context, id int64) error
	Shops(ctx context.Context) ([]gateway.Shop, error)
	CreateShop(ctx context.Context, in gateway.ShopInput) (*gateway.Shop, error)
}

type Directory struct {
	sess    *session.Session
	backend Backend
	logger  zerolog.Logger
}

func New(sess *session.Session, backend Backend, logger zerolog.Logger) *Directory {
	return &Directory{sess: sess, backend: backend, logger: logger.With().Str("component", "directory").Logger()}
}

// Users lists every account, optionally narrowed to the members of one section.
func (d *Directory) Users(ctx context.Context, section membership.SectionID) ([]membership.User, error) {
	users, err := d.backend.Users(ctx)
	if err != nil {
		return nil, err
	}
	if section == 0 {
		return users, nil
	}

	out := make([]membership.User, 0, len(users))
	for _, u := range users {
		if _, ok := u.Membership(section); ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *Directory) CreateUser(ctx context.Context, in gateway.NewUser) error {
	if !d.sess.CanManageUsers() {
		return ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := util.RequireString(in.Name, "name"); err != nil {
		return err
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return err
	}
	if in.IsGlobalAdmin && !d.sess.CanManageRoles() {
		return ErrForbidden
	}

	if err := d.backend.CreateUser(ctx, in); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	d.logger.Info().Str("email", in.Email).Msg("user created")
	return nil
}

func (d *Directory) DeleteUser(ctx context.Context, id int64) error {
	if !d.sess.CanManageUsers() {
		return ErrForbidden
	}
	if id == d.sess.Identity.ID {
		return errors.New("you cannot delete your own account")
	}
	if err := d.backend.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	d.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// Shops lists shop listings by name.
func (d *Directory) Shops(ctx context.Context) ([]gateway.Shop, error) {
	shops, err := d.backend.Shops(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(shops, func(i, j int) bool {
		return strings.ToLower(shops[i].Name) < strings.ToLower(shops[j].Name)
	})
	return shops, nil
}

func (d *Directory) CreateShop(ctx context.Context, in gateway.ShopInput) (*gateway.Shop, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := util.RequireString(in.Name, "name"); err != nil {
		return nil, err
	}
	shop, err := d.backend.CreateShop(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create shop: %w", err)
	}
	return shop, nil
}
