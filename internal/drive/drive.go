package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

var ErrAccessDenied = errors.New("drive accounts are restricted to admins and the Amin Ser")

// Backend is the slice of the gateway used for drive accounts.
type Backend interface {
	DriveAccounts(ctx context.Context) ([]gateway.DriveAccount, error)
	DriveAccountPassword(ctx context.Context, id int64) (string, error)
	CreateDriveAccount(ctx context.Context, in gateway.DriveAccountInput) (*gateway.DriveAccount, error)
	DeleteDriveAccount(ctx context.Context, id int64) error
}

// Vault lists and manages stored Google Drive credentials.
type Vault struct {
	sess    *session.Session
	backend Backend
	logger  zerolog.Logger
}

func NewVault(sess *session.Session, backend Backend, logger zerolog.Logger) *Vault {
	return &Vault{sess: sess, backend: backend, logger: logger.With().Str("component", "drive").Logger()}
}

// List returns accounts whose email or title contains search, ignoring case.
func (v *Vault) List(ctx context.Context, search string) ([]gateway.DriveAccount, error) {
	if !v.sess.CanAccessDrive() {
		return nil, ErrAccessDenied
	}
	all, err := v.backend.DriveAccounts(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return all, nil
	}
	out := make([]gateway.DriveAccount, 0, len(all))
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Email), needle) || strings.Contains(strings.ToLower(a.Title), needle) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Reveal fetches the stored password of one account.
func (v *Vault) Reveal(ctx context.Context, id int64) (string, error) {
	if !v.sess.CanAccessDrive() {
		return "", ErrAccessDenied
	}
	password, err := v.backend.DriveAccountPassword(ctx, id)
	if err != nil {
		return "", fmt.Errorf("reveal password: %w", err)
	}
	v.logger.Info().Int64("account_id", id).Int64("user_id", v.sess.Identity.ID).Msg("drive password revealed")
	return password, nil
}

func (v *Vault) Create(ctx context.Context, title, email, password string) (*gateway.DriveAccount, error) {
	if !v.sess.CanAccessDrive() {
		return nil, ErrAccessDenied
	}
	if err := util.RequireString(title, "title"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.RequireString(password, "password"); err != nil {
		return nil, err
	}

	acc, err := v.backend.CreateDriveAccount(ctx, gateway.DriveAccountInput{
		Title:    strings.TrimSpace(title),
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("create drive account: %w", err)
	}
	return acc, nil
}

func (v *Vault) Delete(ctx context.Context, id int64) error {
	if !v.sess.CanAccessDrive() {
		return ErrAccessDenied
	}
	if err := v.backend.DeleteDriveAccount(ctx, id); err != nil {
		return fmt.Errorf("delete drive account: %w", err)
	}
	v.logger.Info().Int64("account_id", id).Msg("drive account deleted")
	return nil
}
