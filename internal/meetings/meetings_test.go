package meetings

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
	sections []gateway.MeetingSection
	err      error
	saved    map[membership.SectionID]string
}

func (s *stubBackend) Meetings(ctx context.Context) ([]gateway.MeetingSection, error) {
	return s.sections, s.err
}

func (s *stubBackend) SaveMeetingLink(ctx context.Context, section membership.SectionID, link string) error {
	if s.saved == nil {
		s.saved = make(map[membership.SectionID]string)
	}
	s.saved[section] = link
	return nil
}

func forsanPresident() *session.Session {
	return &session.Session{Token: "t", Identity: gateway.Profile{Roles: []gateway.Grant{
		{SectionID: membership.Forsan, RoleName: "Wakil Tanchi2a"},
	}}}
}

func TestLoadMapsSections(t *testing.T) {
	backend := &stubBackend{sections: []gateway.MeetingSection{
		{ID: membership.Chabiba, Name: "Chabiba", Meetings: []gateway.Meeting{{ID: 1, DriveLink: "https://drive.example/a"}, {ID: 2}}},
		{ID: membership.Forsan, Name: "Forsan"},
	}}
	listing := NewArchive(forsanPresident(), backend, zerolog.Nop()).Load(context.Background())

	if listing.Degraded || len(listing.Entries) != 2 {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if e := listing.Entries[0]; e.Title != "Chabiba Meetings" || len(e.Links) != 1 || e.Editable {
		t.Fatalf("unexpected chabiba entry %+v", e)
	}
	if !listing.Entries[1].Editable {
		t.Fatalf("forsan should be editable for its wakil tanchi2a")
	}
}

func TestLoadFallsBackToPlaceholders(t *testing.T) {
	backend := &stubBackend{err: &gateway.Error{Kind: gateway.KindServer, Status: 500}}
	listing := NewArchive(forsanPresident(), backend, zerolog.Nop()).Load(context.Background())

	if !listing.Degraded || !errors.Is(listing.Err, gateway.ErrServer) {
		t.Fatalf("expected degraded listing, got %+v", listing)
	}
	want := []string{"Chabiba Meetings", "Tala2e3 Meetings", "Forsan Meetings"}
	if len(listing.Entries) != len(want) {
		t.Fatalf("unexpected placeholders %+v", listing.Entries)
	}
	for i, e := range listing.Entries {
		if e.Title != want[i] || len(e.Links) != 0 {
			t.Fatalf("placeholder %d = %+v", i, e)
		}
	}
}

func TestSaveLinkPermissions(t *testing.T) {
	backend := &stubBackend{}
	archive := NewArchive(forsanPresident(), backend, zerolog.Nop())
	ctx := context.Background()

	if err := archive.SaveLink(ctx, membership.Chabiba, "https://drive.example/x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := archive.SaveLink(ctx, membership.Forsan, "not a link"); err == nil {
		t.Fatalf("invalid link accepted")
	}
	if err := archive.SaveLink(ctx, membership.Forsan, " https://drive.example/x "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if backend.saved[membership.Forsan] != "https://drive.example/x" {
		t.Fatalf("link not saved: %v", backend.saved)
	}
}
