package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
)

// MembershipService applies section lifecycle changes on the ledger.
type MembershipService struct {
	store *repo.Store
	now   func() time.Time
}

func NewMembershipService(store *repo.Store) *MembershipService {
	return &MembershipService{store: store, now: time.Now}
}

func (s *MembershipService) today() membership.Date {
	return membership.Today(s.now())
}

// Roster lists the members of a section as of day.
func (s *MembershipService) Roster(ctx context.Context, section membership.SectionID, day membership.Date) []membership.User {
	return s.store.MembersOn(ctx, section, day)
}

func (s *MembershipService) AddToSection(ctx context.Context, userID int64, section membership.SectionID) error {
	if _, err := s.store.GetAccountByID(ctx, userID); err != nil {
		return err
	}
	row, err := s.store.Ledger().AddToSection(userID, section, s.today())
	if err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Int("section_id", int(section)).Int64("row_id", row.ID).Msg("member added")
	return nil
}

func (s *MembershipService) AssignRole(ctx context.Context, userID int64, section membership.SectionID, role membership.RoleID) error {
	if _, err := s.store.GetAccountByID(ctx, userID); err != nil {
		return err
	}
	row, err := s.store.Ledger().AssignRole(userID, section, role, s.today())
	if err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Int("section_id", int(section)).Int("role_id", int(role)).
		Int64("row_id", row.ID).Msg("role assigned")
	return nil
}

func (s *MembershipService) RemoveRole(ctx context.Context, userID int64, section membership.SectionID) error {
	if _, err := s.store.GetAccountByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.Ledger().RemoveRole(userID, section, s.today()); err != nil {
		return err
	}
	log.Info().Int64("user_id", userID).Int("section_id", int(section)).Msg("role removed")
	return nil
}

func (s *MembershipService) RemoveFromSection(ctx context.Context, userID int64, section membership.SectionID) error {
	if _, err := s.store.GetAccountByID(ctx, userID); err != nil {
		return err
	}
	closed, err := s.store.Ledger().LeaveSection(userID, section, s.today())
	if err != nil {
		return err
	}
	if closed {
		log.Info().Int64("user_id", userID).Int("section_id", int(section)).Msg("member left section")
	}
	return nil
}
