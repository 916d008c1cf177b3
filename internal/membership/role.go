package membership

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownRole is returned for role ids that are not assignable.
var ErrUnknownRole = errors.New("unknown role")

// RoleID identifies a role in the fixed catalog.
type RoleID int

// NormalMember is the sentinel role of members holding no special office.
const NormalMember RoleID = 10

const normalMemberName = "Normal Member"

// Role pairs a catalog id with its display name.
type Role struct {
	ID   RoleID `json:"id"`
	Name string `json:"name"`
}

// catalog order is the order offered in pickers.
var catalog = []Role{
	{ID: 2, Name: "Chabiba President"},
	{ID: 11, Name: "Wakil Tanchi2a"},
	{ID: 12, Name: "Moustashar"},
	{ID: 5, Name: "Wakil Risele"},
	{ID: 6, Name: "Wakil E3lem"},
	{ID: 7, Name: "Amin Ser"},
	{ID: 8, Name: "Amin Sandou2"},
	{ID: 9, Name: "Ne2b Al Ra2is"},
}

// Roles returns the assignable catalog. The sentinel is not part of it.
func Roles() []Role {
	out := make([]Role, len(catalog))
	copy(out, catalog)
	return out
}

// LookupRole finds an assignable role.
func LookupRole(id RoleID) (Role, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// IsSentinel reports whether id means "no special role". Zero is how a missing
// role_id decodes and is treated the same way.
func (id RoleID) IsSentinel() bool {
	return id == NormalMember || id == 0
}

// RoleName returns the display name; anything outside the catalog reads as a normal member.
func RoleName(id RoleID) string {
	if r, ok := LookupRole(id); ok {
		return r.Name
	}
	return normalMemberName
}

// ParseRole accepts a catalog id or a display name (case-insensitive).
func ParseRole(value string) (RoleID, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if _, ok := LookupRole(RoleID(n)); ok {
			return RoleID(n), nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownRole, n)
	}
	for _, r := range catalog {
		if strings.EqualFold(r.Name, value) {
			return r.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, value)
}
