package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

// Manager runs login and logout against the backend and keeps the store in step.
type Manager struct {
	client *gateway.Client
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager wires a manager. client must not carry a token.
func NewManager(client *gateway.Client, store Store, logger zerolog.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}
}

// Login exchanges credentials for a token, fetches the identity with it and stores both.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.RequireString(password, "password"); err != nil {
		return nil, err
	}

	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, gateway.ErrValidation) {
			m.logger.Warn().Str("email", email).Msg("login rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	profile, err := m.client.WithToken(token).Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	s := New(token, *profile, m.now())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info().Int64("user_id", profile.ID).Bool("global_admin", profile.IsGlobalAdmin).Msg("logged in")
	return s, nil
}

// Logout forgets the stored session. Logging out twice is fine.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Current returns the stored session, clearing it when it has expired.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(m.now()); err != nil {
		if errors.Is(err, ErrExpired) {
			if clearErr := m.store.Clear(ctx); clearErr != nil {
				m.logger.Warn().Err(clearErr).Msg("could not clear expired session")
			}
		}
		return nil, err
	}
	return s, nil
}

// Client returns the gateway bound to the session's credential.
func (m *Manager) Client(s *Session) *gateway.Client {
	return m.client.WithToken(s.Token)
}
