package membership

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotMember is returned when an operation needs an open row and there is none.
	ErrNotMember = errors.New("user is not an active member of the section")
	// ErrAlreadyMember is returned when adding a user that already has an open row.
	ErrAlreadyMember = errors.New("user is already a member of the section")
	// ErrRoleTaken is returned when another user holds the role in the section.
	ErrRoleTaken = errors.New("role already taken in the section")
)

// Row is one history entry of the ledger.
type Row struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SectionID SectionID `json:"section_id"`
	Pivot
}

// Ledger keeps the membership history and enforces the lifecycle rules. Rows are
// only ever appended or closed, never removed.
type Ledger struct {
	mu     sync.RWMutex
	rows   []Row
	nextID int64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

// AddToSection opens a sentinel row for a user with no open row in the section.
func (l *Ledger) AddToSection(userID int64, section SectionID, today Date) (Row, error) {
	if err := checkArgs(section, today); err != nil {
		return Row{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.openIndex(userID, section); ok {
		return Row{}, ErrAlreadyMember
	}
	return l.open(userID, section, NormalMember, today), nil
}

// AssignRole closes the user's open row and opens one holding role. Assigning the role
// the user already holds returns the open row unchanged.
func (l *Ledger) AssignRole(userID int64, section SectionID, role RoleID, today Date) (Row, error) {
	if err := checkArgs(section, today); err != nil {
		return Row{}, err
	}
	if _, ok := LookupRole(role); !ok {
		return Row{}, fmt.Errorf("%w: %d", ErrUnknownRole, int(role))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.openIndex(userID, section)
	if !ok {
		return Row{}, ErrNotMember
	}
	if l.rows[idx].Role() == role {
		return l.rows[idx], nil
	}
	for _, r := range l.rows {
		if r.SectionID == section && r.UserID != userID && r.Current() && r.Role() == role {
			return Row{}, ErrRoleTaken
		}
	}

	l.close(idx, today)
	return l.open(userID, section, role, today), nil
}

// RemoveRole reverts the user's open row to the sentinel. A user already holding the
// sentinel is left untouched.
func (l *Ledger) RemoveRole(userID int64, section SectionID, today Date) (Row, error) {
	if err := checkArgs(section, today); err != nil {
		return Row{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.openIndex(userID, section)
	if !ok {
		return Row{}, ErrNotMember
	}
	if l.rows[idx].Role().IsSentinel() {
		return l.rows[idx], nil
	}

	l.close(idx, today)
	return l.open(userID, section, NormalMember, today), nil
}

// LeaveSection closes the user's open row. It reports whether anything was closed;
// leaving a section the user is not in is not an error.
func (l *Ledger) LeaveSection(userID int64, section SectionID, today Date) (bool, error) {
	if err := checkArgs(section, today); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.openIndex(userID, section)
	if !ok {
		return false, nil
	}
	l.close(idx, today)
	return true, nil
}

// Current returns the open row of a user in a section.
func (l *Ledger) Current(userID int64, section SectionID) (Row, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.openIndex(userID, section)
	if !ok {
		return Row{}, false
	}
	return l.rows[idx], true
}

// ActiveOn returns, per user, the row covering day, ordered by user id. When a same-day
// transition leaves two rows covering the day, the later one supersedes the closed one.
func (l *Ledger) ActiveOn(section SectionID, day Date) []Row {
	l.mu.RLock()
	defer l.mu.RUnlock()

	byUser := make(map[int64]Row)
	for _, r := range l.rows {
		if r.SectionID != section || !r.ActiveOn(day) {
			continue
		}
		byUser[r.UserID] = r
	}

	out := make([]Row, 0, len(byUser))
	for _, r := range byUser {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Rows returns the full history of a user in a section, oldest first.
func (l *Ledger) Rows(userID int64, section SectionID) []Row {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Row
	for _, r := range l.rows {
		if r.UserID == userID && r.SectionID == section {
			out = append(out, r)
		}
	}
	return out
}

// CloseAll closes every open row of a user across sections and returns how many were
// closed. Past rows stay, so rosters of earlier dates do not change.
func (l *Ledger) CloseAll(userID int64, today Date) (int, error) {
	if today.IsZero() {
		return 0, ErrInvalidDate
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	closed := 0
	for i, r := range l.rows {
		if r.UserID == userID && r.Current() {
			l.close(i, today)
			closed++
		}
	}
	return closed, nil
}

func (l *Ledger) openIndex(userID int64, section SectionID) (int, bool) {
	for i := len(l.rows) - 1; i >= 0; i-- {
		r := l.rows[i]
		if r.UserID == userID && r.SectionID == section && r.Current() {
			return i, true
		}
	}
	return 0, false
}

func (l *Ledger) open(userID int64, section SectionID, role RoleID, today Date) Row {
	row := Row{
		ID:        l.nextID,
		UserID:    userID,
		SectionID: section,
		Pivot:     Pivot{RoleID: role, StartDate: today},
	}
	l.nextID++
	l.rows = append(l.rows, row)
	return row
}

// close never lets end fall before start, even with a clock running behind.
func (l *Ledger) close(idx int, today Date) {
	end := today
	if end.Before(l.rows[idx].StartDate) {
		end = l.rows[idx].StartDate
	}
	l.rows[idx].EndDate = &end
}

func checkArgs(section SectionID, today Date) error {
	if !section.IsConcrete() {
		return fmt.Errorf("%w: %d", ErrUnknownSection, int(section))
	}
	if today.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
