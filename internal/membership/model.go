package membership

// Pivot is the time-ranged row joining a user to a section with a role.
type Pivot struct {
	RoleID    RoleID `json:"role_id"`
	StartDate Date   `json:"start_date"`
	EndDate   *Date  `json:"end_date"`
}

// Role returns the held role, mapping a missing id to the sentinel.
func (p Pivot) Role() RoleID {
	if p.RoleID.IsSentinel() {
		return NormalMember
	}
	return p.RoleID
}

// Current reports whether the row is still open.
func (p Pivot) Current() bool {
	return p.EndDate == nil
}

// ActiveOn reports whether the row covers the given day: start <= day and (no end or end >= day).
func (p Pivot) ActiveOn(day Date) bool {
	if p.StartDate.After(day) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(day)
}

// SectionMembership is a section as embedded in a user payload, with the pivot resolved for
// the queried date.
type SectionMembership struct {
	ID    SectionID `json:"id"`
	Name  string    `json:"name"`
	Pivot *Pivot    `json:"pivot,omitempty"`
}

// User is a member of the community as returned by the backend.
type User struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone,omitempty"`
	IsGlobalAdmin bool                `json:"is_global_admin"`
	Sections      []SectionMembership `json:"sections"`
}

// Membership returns the user's entry for a section, if any.
func (u User) Membership(section SectionID) (SectionMembership, bool) {
	for _, s := range u.Sections {
		if s.ID == section {
			return s, true
		}
	}
	return SectionMembership{}, false
}

// Standing is a user's resolved position in one section at the queried date.
type Standing struct {
	UserID   int64
	Name     string
	Email    string
	RoleID   RoleID
	RoleName string
	Start    *Date
	End      *Date
	// Member is false when the payload carried no pivot for the section.
	Member  bool
	Current bool
}

// HasRole reports whether the standing holds an office other than the sentinel.
func (s Standing) HasRole() bool {
	return !s.RoleID.IsSentinel()
}

// Range renders "start to end", with Present for an open row.
func (s Standing) Range() string {
	start := "-"
	if s.Start != nil && !s.Start.IsZero() {
		start = s.Start.String()
	}
	end := "Present"
	if s.End != nil {
		end = s.End.String()
	}
	return start + " to " + end
}

// Resolve derives the standing of a user in a section. Without a pivot the sentinel applies.
func Resolve(u User, section SectionID) Standing {
	st := Standing{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		RoleID:   NormalMember,
		RoleName: RoleName(NormalMember),
	}

	m, ok := u.Membership(section)
	if !ok || m.Pivot == nil {
		return st
	}

	p := *m.Pivot
	start := p.StartDate
	st.Member = true
	st.RoleID = p.Role()
	st.RoleName = RoleName(st.RoleID)
	st.Start = &start
	if p.EndDate != nil {
		end := *p.EndDate
		st.End = &end
	}
	st.Current = p.Current()
	return st
}

// ResolveAll resolves every user of a roster payload, preserving order.
func ResolveAll(users []User, section SectionID) []Standing {
	out := make([]Standing, 0, len(users))
	for _, u := range users {
		out = append(out, Resolve(u, section))
	}
	return out
}

// TakenRoles maps every non-sentinel role held in an open row of the payload to its holder.
// Closed rows still covering the queried day do not hold their role. It mirrors a backend
// invariant and is advisory only: the backend may still reject an assignment.
func TakenRoles(users []User, section SectionID) map[RoleID]int64 {
	taken := make(map[RoleID]int64)
	for _, u := range users {
		m, ok := u.Membership(section)
		if !ok || m.Pivot == nil || !m.Pivot.Current() {
			continue
		}
		role := m.Pivot.Role()
		if role.IsSentinel() {
			continue
		}
		taken[role] = u.ID
	}
	return taken
}

// AssignableRoles is the catalog minus taken roles, in catalog order.
func AssignableRoles(taken map[RoleID]int64) []Role {
	out := make([]Role, 0, len(catalog))
	for _, r := range catalog {
		if _, ok := taken[r.ID]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
