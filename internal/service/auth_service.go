package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/auth"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError is a validation failure attached to one request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

type authRepository interface {
	GetAccountByEmail(ctx context.Context, email string) (repo.Account, error)
	GetAccountByID(ctx context.Context, id int64) (repo.Account, error)
	CreateAccount(ctx context.Context, in repo.NewAccount) (repo.Account, error)
	CurrentMemberships(userID int64) []membership.SectionMembership
}

// AuthService issues tokens and builds profiles.
type AuthService struct {
	repo authRepository
	jwt  *auth.JWTManager
}

func NewAuthService(r *repo.Store, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, jwt: jwtMgr}
}

// JWT exposes the token manager for the auth middleware.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Login checks credentials and returns a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: unknown email")
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.Verify(password, acc.PasswordHash) {
		log.Warn().Int64("user_id", acc.ID).Msg("login: wrong password")
		return "", ErrInvalidCredentials
	}

	token, _, err := s.jwt.Issue(acc.ID, acc.IsGlobalAdmin)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Profile describes a user the way GET /me reports it.
func (s *AuthService) Profile(ctx context.Context, userID int64) (gateway.Profile, error) {
	acc, err := s.repo.GetAccountByID(ctx, userID)
	if err != nil {
		return gateway.Profile{}, err
	}

	p := gateway.Profile{
		ID:            acc.ID,
		Name:          acc.Name,
		Email:         acc.Email,
		Phone:         acc.Phone,
		IsGlobalAdmin: acc.IsGlobalAdmin,
		IsSuperAdmin:  acc.IsSuperAdmin,
		Roles:         []gateway.Grant{},
	}
	for _, m := range s.repo.CurrentMemberships(acc.ID) {
		if m.Pivot == nil {
			continue
		}
		role := m.Pivot.Role()
		if role.IsSentinel() {
			continue
		}
		if p.RoleID == 0 {
			p.RoleID = int(role)
		}
		p.Roles = append(p.Roles, gateway.Grant{SectionID: m.ID, RoleName: membership.RoleName(role)})
	}
	return p, nil
}

// Register validates and stores a new account.
func (s *AuthService) Register(ctx context.Context, in gateway.NewUser) (repo.Account, error) {
	if err := util.RequireString(in.Name, "name"); err != nil {
		return repo.Account{}, &FieldError{Field: "name", Message: err.Error()}
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		return repo.Account{}, &FieldError{Field: "email", Message: err.Error()}
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return repo.Account{}, &FieldError{Field: "password", Message: err.Error()}
	}

	hash, err := auth.Hash(in.Password)
	if err != nil {
		return repo.Account{}, err
	}

	acc, err := s.repo.CreateAccount(ctx, repo.NewAccount{
		Name:          in.Name,
		Email:         strings.TrimSpace(in.Email),
		Phone:         in.Phone,
		PasswordHash:  hash,
		IsGlobalAdmin: in.IsGlobalAdmin,
	})
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return repo.Account{}, &FieldError{Field: "email", Message: "The email has already been taken."}
	}
	return acc, err
}
