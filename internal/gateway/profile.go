package gateway

import (
	"strings"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// meeting managers besides global and super admins
var meetingManagerRoles = []string{"President", "Ne2b al Ra2is", "Wakil Tanchi2a"}

const driveKeeperRole = "Amin Ser"

// CanManageRoles reports the privilege to assign and remove roles in any section.
func (p Profile) CanManageRoles() bool {
	return p.IsGlobalAdmin
}

// CanManageUsers reports the privilege to add and delete users.
func (p Profile) CanManageUsers() bool {
	return p.IsGlobalAdmin || p.RoleID == 1 || p.RoleID == 2
}

// CanManageMeetings reports whether the meeting link of a section may be edited.
func (p Profile) CanManageMeetings(section membership.SectionID) bool {
	if p.IsGlobalAdmin || p.IsSuperAdmin {
		return true
	}
	for _, g := range p.Roles {
		if g.SectionID == section && matchesAny(g.RoleName, meetingManagerRoles...) {
			return true
		}
	}
	return false
}

// CanAccessDrive reports access to the Drive credential vault.
func (p Profile) CanAccessDrive() bool {
	if p.IsGlobalAdmin {
		return true
	}
	for _, g := range p.Roles {
		if matchesAny(g.RoleName, driveKeeperRole) {
			return true
		}
	}
	return false
}

func matchesAny(name string, candidates ...string) bool {
	name = strings.TrimSpace(name)
	for _, c := range candidates {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}
