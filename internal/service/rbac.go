package service

import (
	"context"
	"errors"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

var (
	// ErrForbidden is returned when the caller lacks the privilege.
	ErrForbidden = errors.New("this action is unauthorized")
)

// RBACService evaluates privileges from the caller's current profile.
type RBACService struct {
	auth *AuthService
}

func NewRBACService(a *AuthService) *RBACService {
	return &RBACService{auth: a}
}

func (s *RBACService) require(ctx context.Context, userID int64, allowed func(gateway.Profile) bool) error {
	p, err := s.auth.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed(p) {
		return ErrForbidden
	}
	return nil
}

// RequireRoleManager allows global admins only.
func (s *RBACService) RequireRoleManager(ctx context.Context, userID int64) error {
	return s.require(ctx, userID, gateway.Profile.CanManageRoles)
}

func (s *RBACService) RequireUserManager(ctx context.Context, userID int64) error {
	return s.require(ctx, userID, gateway.Profile.CanManageUsers)
}

func (s *RBACService) RequireDriveAccess(ctx context.Context, userID int64) error {
	return s.require(ctx, userID, gateway.Profile.CanAccessDrive)
}

func (s *RBACService) RequireMeetingManager(ctx context.Context, userID int64, section membership.SectionID) error {
	return s.require(ctx, userID, func(p gateway.Profile) bool { return p.CanManageMeetings(section) })
}
