package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// Store is the in-memory database of the development API. Section memberships live
// in the ledger; everything else is kept in maps keyed by id.
type Store struct {
	mu       sync.RWMutex
	ledger   *membership.Ledger
	now      func() time.Time
	accounts map[int64]Account
	events   []EventRecord
	shops    []ShopRecord
	drive    map[int64]DriveAccountRecord
	meetings map[membership.SectionID]MeetingRecord
	seq      int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		ledger:   membership.NewLedger(),
		now:      time.Now,
		accounts: make(map[int64]Account),
		drive:    make(map[int64]DriveAccountRecord),
		meetings: make(map[membership.SectionID]MeetingRecord),
	}
}

// Ledger exposes the membership history.
func (s *Store) Ledger() *membership.Ledger {
	return s.ledger
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) CreateAccount(ctx context.Context, in NewAccount) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, a := range s.accounts {
		if a.Email == email {
			return Account{}, ErrDuplicateEmail
		}
	}

	acc := Account{
		ID:            s.nextID(),
		Name:          strings.TrimSpace(in.Name),
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		PasswordHash:  in.PasswordHash,
		IsGlobalAdmin: in.IsGlobalAdmin,
		CreatedAt:     s.now().UTC(),
	}
	s.accounts[acc.ID] = acc
	return acc, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *Store) GetAccountByID(ctx context.Context, id int64) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

// ListAccounts returns accounts ordered by id.
func (s *Store) ListAccounts(ctx context.Context) []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DeleteAccount removes the account and closes its open memberships as of today.
// Closed rows stay in the ledger; MembersOn skips accounts that no longer exist.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	if _, err := s.ledger.CloseAll(id, membership.Today(s.now())); err != nil {
		return err
	}
	delete(s.accounts, id)
	return nil
}

// MembersOn builds the roster payload of a section: every account with a row
// active on day, carrying that row as its pivot.
func (s *Store) MembersOn(ctx context.Context, section membership.SectionID, day membership.Date) []membership.User {
	rows := s.ledger.ActiveOn(section, day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]membership.User, 0, len(rows))
	for _, row := range rows {
		acc, ok := s.accounts[row.UserID]
		if !ok {
			continue
		}
		u := toUser(acc)
		pivot := row.Pivot
		u.Sections = []membership.SectionMembership{{ID: section, Name: section.Name(), Pivot: &pivot}}
		out = append(out, u)
	}
	return out
}

// UsersWithCurrentSections lists every account with its open memberships.
func (s *Store) UsersWithCurrentSections(ctx context.Context) []membership.User {
	accounts := s.ListAccounts(ctx)
	out := make([]membership.User, 0, len(accounts))
	for _, acc := range accounts {
		u := toUser(acc)
		u.Sections = s.CurrentMemberships(acc.ID)
		out = append(out, u)
	}
	return out
}

// CurrentMemberships returns the open rows of a user, in section order.
func (s *Store) CurrentMemberships(userID int64) []membership.SectionMembership {
	out := []membership.SectionMembership{}
	for _, sec := range membership.Sections() {
		row, ok := s.ledger.Current(userID, sec.ID)
		if !ok {
			continue
		}
		pivot := row.Pivot
		out = append(out, membership.SectionMembership{ID: sec.ID, Name: sec.Name, Pivot: &pivot})
	}
	return out
}

func toUser(acc Account) membership.User {
	return membership.User{
		ID:            acc.ID,
		Name:          acc.Name,
		Email:         acc.Email,
		Phone:         acc.Phone,
		IsGlobalAdmin: acc.IsGlobalAdmin,
	}
}

func (s *Store) InsertEvent(ctx context.Context, ev EventRecord) EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = s.nextID()
	ev.CreatedAt = s.now().UTC()
	ev.Sections = append([]membership.SectionID(nil), ev.Sections...)
	s.events = append(s.events, ev)
	return ev
}

// ListEvents returns events in insertion order.
func (s *Store) ListEvents(ctx context.Context) []EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EventRecord(nil), s.events...)
}

func (s *Store) InsertShop(ctx context.Context, shop ShopRecord) ShopRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	shop.ID = s.nextID()
	s.shops = append(s.shops, shop)
	return shop
}

func (s *Store) ListShops(ctx context.Context) []ShopRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ShopRecord(nil), s.shops...)
}

func (s *Store) InsertDriveAccount(ctx context.Context, acc DriveAccountRecord) DriveAccountRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc.ID = s.nextID()
	s.drive[acc.ID] = acc
	return acc
}

func (s *Store) GetDriveAccount(ctx context.Context, id int64) (DriveAccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.drive[id]
	if !ok {
		return DriveAccountRecord{}, ErrNotFound
	}
	return acc, nil
}

// ListDriveAccounts returns credentials ordered by id.
func (s *Store) ListDriveAccounts(ctx context.Context) []DriveAccountRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DriveAccountRecord, 0, len(s.drive))
	for _, acc := range s.drive {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) DeleteDriveAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drive[id]; !ok {
		return ErrNotFound
	}
	delete(s.drive, id)
	return nil
}

// SetMeetingLink replaces the archived link of a section.
func (s *Store) SetMeetingLink(ctx context.Context, section membership.SectionID, link string) MeetingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.meetings[section]
	if !ok {
		rec = MeetingRecord{ID: s.nextID(), SectionID: section}
	}
	rec.DriveLink = link
	rec.UpdatedAt = s.now().UTC()
	s.meetings[section] = rec
	return rec
}

// Meeting returns the archived link of a section, if any.
func (s *Store) Meeting(ctx context.Context, section membership.SectionID) (MeetingRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.meetings[section]
	return rec, ok
}
