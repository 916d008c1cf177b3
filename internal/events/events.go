package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

var (
	ErrNegativeTotal = errors.New("totals cannot be negative")
	ErrNoSections    = errors.New("select at least one section")
)

// Draft is an event being composed. Sections may include Shared; it is expanded on submission.
type Draft struct {
	Title        string
	Type         string
	Description  string
	EventDate    membership.Date
	TotalSpent   decimal.Decimal
	TotalRevenue decimal.Decimal
	Notes        string
	DriveLink    string
	SharedEvent  bool
	Sections     []membership.SectionID
}

// Validate checks the fields every submitter must fill in.
func (d Draft) Validate() error {
	if err := util.RequireString(d.Title, "title"); err != nil {
		return err
	}
	if err := util.RequireString(d.Type, "type"); err != nil {
		return err
	}
	if d.TotalSpent.IsNegative() || d.TotalRevenue.IsNegative() {
		return ErrNegativeTotal
	}
	if strings.TrimSpace(d.DriveLink) != "" {
		if err := util.ValidateLink(d.DriveLink, "drive_link"); err != nil {
			return err
		}
	}
	return nil
}

// Payload builds the request body. Global admins target sections, with Shared
// expanded to every concrete section; everyone else relies on shared_event.
func (d Draft) Payload(sess *session.Session, today membership.Date) (gateway.EventInput, error) {
	if err := d.Validate(); err != nil {
		return gateway.EventInput{}, err
	}

	in := gateway.EventInput{
		Title:        strings.TrimSpace(d.Title),
		Type:         strings.TrimSpace(d.Type),
		Description:  d.Description,
		EventDate:    d.EventDate,
		TotalSpent:   d.TotalSpent,
		TotalRevenue: d.TotalRevenue,
		Notes:        d.Notes,
		DriveLink:    strings.TrimSpace(d.DriveLink),
		SharedEvent:  d.SharedEvent,
	}
	if in.EventDate.IsZero() {
		in.EventDate = today
	}

	if sess.CanManageRoles() {
		if len(d.Sections) == 0 {
			return gateway.EventInput{}, ErrNoSections
		}
		sections, err := membership.ExpandSections(d.Sections)
		if err != nil {
			return gateway.EventInput{}, err
		}
		in.Sections = sections
	}
	return in, nil
}

// Backend is the slice of the gateway used for events.
type Backend interface {
	Events(ctx context.Context) ([]gateway.Event, error)
	CreateEvent(ctx context.Context, in gateway.EventInput) (*gateway.Event, error)
}

// Service lists and records events for one session.
type Service struct {
	sess    *session.Session
	backend Backend
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(sess *session.Session, backend Backend, logger zerolog.Logger) *Service {
	return &Service{
		sess:    sess,
		backend: backend,
		logger:  logger.With().Str("component", "events").Logger(),
		now:     time.Now,
	}
}

// Create submits a draft and returns the stored event.
func (s *Service) Create(ctx context.Context, d Draft) (*gateway.Event, error) {
	if err := s.sess.Validate(s.now()); err != nil {
		return nil, err
	}
	in, err := d.Payload(s.sess, membership.Today(s.now()))
	if err != nil {
		return nil, err
	}

	ev, err := s.backend.CreateEvent(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info().Int64("event_id", ev.ID).Str("title", ev.Title).Msg("event created")
	return ev, nil
}

// List returns events newest first.
func (s *Service) List(ctx context.Context) ([]gateway.Event, error) {
	if err := s.sess.Validate(s.now()); err != nil {
		return nil, err
	}
	events, err := s.backend.Events(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventDate.After(events[j].EventDate)
	})
	return events, nil
}

// Totals sums spending and revenue over events.
func Totals(events []gateway.Event) (spent, revenue, net decimal.Decimal) {
	for _, e := range events {
		spent = spent.Add(e.TotalSpent)
		revenue = revenue.Add(e.TotalRevenue)
	}
	return spent, revenue, revenue.Sub(spent)
}
