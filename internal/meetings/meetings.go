package meetings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

var ErrForbidden = errors.New("you cannot edit the meeting link of this section")

// Backend is the slice of the gateway used for meetings.
type Backend interface {
	Meetings(ctx context.Context) ([]gateway.MeetingSection, error)
	SaveMeetingLink(ctx context.Context, section membership.SectionID, link string) error
}

// Entry is one section's archive as shown to the session.
type Entry struct {
	Section  membership.SectionID
	Title    string
	Links    []string
	Editable bool
}

// Listing is the archive page. Degraded is set when the backend could not be read
// and placeholders are shown instead.
type Listing struct {
	Entries  []Entry
	Degraded bool
	Err      error
}

type Archive struct {
	sess    *session.Session
	backend Backend
	logger  zerolog.Logger
}

func NewArchive(sess *session.Session, backend Backend, logger zerolog.Logger) *Archive {
	return &Archive{sess: sess, backend: backend, logger: logger.With().Str("component", "meetings").Logger()}
}

// Load never fails: on any error it falls back to empty entries for every section.
func (a *Archive) Load(ctx context.Context) Listing {
	sections, err := a.backend.Meetings(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("meetings unavailable, showing placeholders")
		return Listing{Entries: a.placeholders(), Degraded: true, Err: err}
	}

	entries := make([]Entry, 0, len(sections))
	for _, s := range sections {
		links := make([]string, 0, len(s.Meetings))
		for _, m := range s.Meetings {
			if link := strings.TrimSpace(m.DriveLink); link != "" {
				links = append(links, link)
			}
		}
		entries = append(entries, Entry{
			Section:  s.ID,
			Title:    s.Name + " Meetings",
			Links:    links,
			Editable: a.sess.CanManageMeetings(s.ID),
		})
	}
	return Listing{Entries: entries}
}

func (a *Archive) placeholders() []Entry {
	out := make([]Entry, 0, 3)
	for _, s := range membership.Sections() {
		out = append(out, Entry{
			Section:  s.ID,
			Title:    s.Name + " Meetings",
			Links:    []string{},
			Editable: a.sess.CanManageMeetings(s.ID),
		})
	}
	return out
}

// SaveLink replaces the meeting link of a section.
func (a *Archive) SaveLink(ctx context.Context, section membership.SectionID, link string) error {
	if !section.IsConcrete() {
		return fmt.Errorf("%w: %d", membership.ErrUnknownSection, int(section))
	}
	if !a.sess.CanManageMeetings(section) {
		return ErrForbidden
	}
	link = strings.TrimSpace(link)
	if err := util.ValidateLink(link, "drive_link"); err != nil {
		return err
	}

	if err := a.backend.SaveMeetingLink(ctx, section, link); err != nil {
		return fmt.Errorf("save meeting link: %w", err)
	}
	a.logger.Info().Str("section", section.Slug()).Msg("meeting link saved")
	return nil
}
