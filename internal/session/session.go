package session

import (
	"errors"
	"time"

	"github.com/lebanesebrotherhood/brotherhood/internal/auth"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

var (
	// ErrNoSession is returned when nobody is logged in.
	ErrNoSession = errors.New("not logged in")
	// ErrExpired is returned when the stored credential is past its expiry.
	ErrExpired = errors.New("session expired, please log in again")
	// ErrInvalidCredentials is returned for a rejected login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is the authenticated identity and its bearer credential. It is created at
// login, read by every view, and discarded at logout.
type Session struct {
	Token     string          `json:"access_token"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
	Identity  gateway.Profile `json:"user_info"`
}

// New builds a session, reading the expiry from the token when it is a JWT.
func New(token string, identity gateway.Profile, now time.Time) *Session {
	s := &Session{Token: token, Identity: identity, CreatedAt: now.UTC()}
	if exp, ok := auth.PeekExpiry(token); ok {
		s.ExpiresAt = exp.UTC()
	}
	return s
}

// Validate reports ErrNoSession or ErrExpired when the session cannot be used.
func (s *Session) Validate(now time.Time) error {
	if s == nil || s.Token == "" {
		return ErrNoSession
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

// TTL is the remaining lifetime, zero when the expiry is unknown.
func (s *Session) TTL(now time.Time) time.Duration {
	if s == nil || s.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// CanManageRoles reports the privilege to assign and remove roles in any section.
func (s *Session) CanManageRoles() bool {
	return s != nil && s.Identity.CanManageRoles()
}

// CanManageUsers reports the privilege to add and delete users.
func (s *Session) CanManageUsers() bool {
	return s != nil && s.Identity.CanManageUsers()
}

// CanManageMeetings reports whether the meeting link of a section may be edited.
func (s *Session) CanManageMeetings(section membership.SectionID) bool {
	return s != nil && s.Identity.CanManageMeetings(section)
}

// CanAccessDrive reports access to the Drive credential vault.
func (s *Session) CanAccessDrive() bool {
	return s != nil && s.Identity.CanAccessDrive()
}
