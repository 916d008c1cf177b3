package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/session"
)

var (
	ErrForbidden  = errors.New("only global admins can change roles")
	ErrRoleTaken  = fmt.Errorf("role already taken in this section: %w", gateway.ErrConflict)
	ErrBusy       = errors.New("a change for this member is already in progress")
	ErrSuperseded = errors.New("query superseded by a newer one")
	ErrNotCurrent = errors.New("member has no open membership in the shown list")
)

// Phase is the load state of the view.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Backend is the slice of the gateway the view talks to.
type Backend interface {
	Roster(ctx context.Context, section membership.SectionID, day membership.Date) ([]membership.User, error)
	AssignRole(ctx context.Context, userID int64, section membership.SectionID, role membership.RoleID) error
	RemoveRole(ctx context.Context, userID int64, section membership.SectionID) error
	AddToSection(ctx context.Context, userID int64, section membership.SectionID) error
	RemoveFromSection(ctx context.Context, userID int64, section membership.SectionID) error
}

// Options tunes a view. The zero value is usable.
type Options struct {
	Now    func() time.Time
	Logger zerolog.Logger
}

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	Section   membership.SectionID
	Phase     Phase
	Date      membership.Date
	Err       error
	Standings []membership.Standing
	Taken     map[membership.RoleID]int64
	InFlight  []int64
}

// View shows the members of one section as of a chosen date and applies role
// changes through the backend. The displayed list always comes from the backend;
// mutations never edit it in place.
type View struct {
	sess    *session.Session
	backend Backend
	section membership.SectionID
	now     func() time.Time
	logger  zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	phase     Phase
	date      membership.Date
	err       error
	standings []membership.Standing
	taken     map[membership.RoleID]int64
	inFlight  map[int64]struct{}
}

// New builds a view for a concrete section.
func New(sess *session.Session, backend Backend, section membership.SectionID, opts Options) (*View, error) {
	if !section.IsConcrete() {
		return nil, fmt.Errorf("%w: %d", membership.ErrUnknownSection, int(section))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &View{
		sess:     sess,
		backend:  backend,
		section:  section,
		now:      now,
		logger:   opts.Logger.With().Str("component", "roster").Str("section", section.Slug()).Logger(),
		inFlight: make(map[int64]struct{}),
	}, nil
}

// Section is the section this view shows.
func (v *View) Section() membership.SectionID { return v.section }

// Load queries the roster as of day, today when day is zero. The list is cleared
// while the query runs and replaced wholesale when it completes. A completion
// overtaken by a newer Load is dropped and reported as ErrSuperseded.
func (v *View) Load(ctx context.Context, day membership.Date) error {
	if err := v.sess.Validate(v.now()); err != nil {
		return err
	}
	if day.IsZero() {
		day = membership.Today(v.now())
	}

	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.phase = Loading
	v.date = day
	v.err = nil
	v.standings = nil
	v.taken = nil
	v.mu.Unlock()

	users, err := v.backend.Roster(ctx, v.section, day)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debug().Str("date", day.String()).Msg("dropping stale roster response")
		return ErrSuperseded
	}
	if err != nil {
		v.phase = Failed
		v.err = err
		v.logger.Warn().Err(err).Str("date", day.String()).Msg("roster query failed")
		return err
	}

	v.standings = membership.ResolveAll(users, v.section)
	v.taken = membership.TakenRoles(users, v.section)
	v.phase = Ready
	return nil
}

// Invalidate re-queries the date currently shown.
func (v *View) Invalidate(ctx context.Context) error {
	v.mu.Lock()
	day := v.date
	v.mu.Unlock()
	return v.Load(ctx, day)
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Section:   v.section,
		Phase:     v.phase,
		Date:      v.date,
		Err:       v.err,
		Standings: append([]membership.Standing(nil), v.standings...),
		Taken:     make(map[membership.RoleID]int64, len(v.taken)),
	}
	for role, user := range v.taken {
		snap.Taken[role] = user
	}
	for id := range v.inFlight {
		snap.InFlight = append(snap.InFlight, id)
	}
	sort.Slice(snap.InFlight, func(i, j int) bool { return snap.InFlight[i] < snap.InFlight[j] })
	return snap
}

// Members filters the shown standings by a case-insensitive name match.
func (v *View) Members(search string) []membership.Standing {
	needle := strings.ToLower(strings.TrimSpace(search))

	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]membership.Standing, 0, len(v.standings))
	for _, st := range v.standings {
		if needle == "" || strings.Contains(strings.ToLower(st.Name), needle) {
			out = append(out, st)
		}
	}
	return out
}

// Assignable lists catalog roles nobody in the shown list holds.
func (v *View) Assignable() []membership.Role {
	v.mu.Lock()
	defer v.mu.Unlock()
	return membership.AssignableRoles(v.taken)
}

// Assign gives a member a role. The taken check uses the shown list and is advisory;
// the backend has the final word and its conflicts come back as gateway.ErrConflict.
func (v *View) Assign(ctx context.Context, userID int64, role membership.RoleID) error {
	if _, ok := membership.LookupRole(role); !ok || role.IsSentinel() {
		return fmt.Errorf("%w: %d", membership.ErrUnknownRole, int(role))
	}
	return v.mutate(ctx, userID, "assign_role", func(ctx context.Context) error {
		if err := v.requireCurrent(userID); err != nil {
			return err
		}
		v.mu.Lock()
		holder, taken := v.taken[role]
		v.mu.Unlock()
		if taken && holder != userID {
			return ErrRoleTaken
		}
		return v.backend.AssignRole(ctx, userID, v.section, role)
	})
}

// RemoveRole reverts a member to an ordinary member.
func (v *View) RemoveRole(ctx context.Context, userID int64) error {
	return v.mutate(ctx, userID, "remove_role", func(ctx context.Context) error {
		if err := v.requireCurrent(userID); err != nil {
			return err
		}
		return v.backend.RemoveRole(ctx, userID, v.section)
	})
}

// requireCurrent accepts only members shown with an open row. Role controls do not
// apply to closed rows.
func (v *View) requireCurrent(userID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, st := range v.standings {
		if st.UserID == userID && st.Current {
			return nil
		}
	}
	return fmt.Errorf("%w: user %d", ErrNotCurrent, userID)
}

// AddToSection makes a user an ordinary member of the section.
func (v *View) AddToSection(ctx context.Context, userID int64) error {
	return v.mutate(ctx, userID, "add_to_section", func(ctx context.Context) error {
		return v.backend.AddToSection(ctx, userID, v.section)
	})
}

// RemoveFromSection ends a user's membership of the section.
func (v *View) RemoveFromSection(ctx context.Context, userID int64) error {
	return v.mutate(ctx, userID, "remove_from_section", func(ctx context.Context) error {
		return v.backend.RemoveFromSection(ctx, userID, v.section)
	})
}

func (v *View) mutate(ctx context.Context, userID int64, action string, call func(context.Context) error) error {
	if err := v.sess.Validate(v.now()); err != nil {
		return err
	}
	if !v.sess.CanManageRoles() {
		return ErrForbidden
	}
	if !v.begin(userID) {
		return ErrBusy
	}
	defer v.end(userID)

	if err := call(ctx); err != nil {
		v.logger.Warn().Err(err).Str("action", action).Int64("user_id", userID).Msg("membership change rejected")
		return err
	}
	v.logger.Info().Str("action", action).Int64("user_id", userID).Msg("membership changed")

	if err := v.Invalidate(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("change saved but refresh failed: %w", err)
	}
	return nil
}

func (v *View) begin(userID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, busy := v.inFlight[userID]; busy {
		return false
	}
	v.inFlight[userID] = struct{}{}
	return true
}

func (v *View) end(userID int64) {
	v.mu.Lock()
	delete(v.inFlight, userID)
	v.mu.Unlock()
}
