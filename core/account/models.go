// Package account holds the tenant-wide settings that gate analytics: the analytics service toggle
// and the per-role permission overrides.
package account

import (
	"strings"

	"github.com/pkg/errors"
)

// Role is the role a user holds in a course through an enrollment.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleTeacher
	RoleTA
	RoleDesigner
	RoleObserver
)

var roleNames = map[Role]string{
	RoleStudent:  "student",
	RoleTeacher:  "teacher",
	RoleTA:       "ta",
	RoleDesigner: "designer",
	RoleObserver: "observer",
}

// Roles lists every known enrollment role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleTA, RoleDesigner, RoleObserver}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RoleUnknown, errors.Errorf("unknown role %q", s)
}

// Permission is a bitset of course-level permissions.
type Permission uint16

const (
	// PermReadAsAdmin allows seeing other users' course data.
	PermReadAsAdmin Permission = 1 << iota
	// PermReadRoster allows listing the course roster.
	PermReadRoster
	// PermViewAnalytics allows the analytics endpoints; never granted by default.
	PermViewAnalytics
)

var permissionNames = map[Permission]string{
	PermReadAsAdmin:   "read_as_admin",
	PermReadRoster:    "read_roster",
	PermViewAnalytics: "view_analytics",
}

func (p Permission) Has(want Permission) bool {
	return p&want == want
}

func (p Permission) String() string {
	names := make([]string, 0, len(permissionNames))
	for _, perm := range []Permission{PermReadAsAdmin, PermReadRoster, PermViewAnalytics} {
		if p.Has(perm) {
			names = append(names, permissionNames[perm])
		}
	}
	return strings.Join(names, "|")
}

func ParsePermission(s string) (Permission, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for perm, name := range permissionNames {
		if name == s {
			return perm, nil
		}
	}
	return 0, errors.Errorf("unknown permission %q", s)
}

var defaultPermissions = map[Role]Permission{
	RoleTeacher:  PermReadAsAdmin | PermReadRoster,
	RoleTA:       PermReadAsAdmin | PermReadRoster,
	RoleDesigner: PermReadAsAdmin | PermReadRoster,
	RoleStudent:  PermReadRoster,
	RoleObserver: PermReadRoster,
}

// DefaultPermissions returns the permissions a role holds before any account override.
func DefaultPermissions(role Role) Permission {
	return defaultPermissions[role]
}

type Account struct {
	ID               int    `json:"id" db:"id"`
	Name             string `json:"name" db:"name"`
	AnalyticsEnabled bool   `json:"analytics_enabled" db:"analytics_enabled"`
}

// RoleOverride turns one permission on or off for one role across an account.
type RoleOverride struct {
	AccountID  int
	Role       Role
	Permission Permission
	Enabled    bool
}

// RolePermissions is the per-request resolution of DefaultPermissions plus account overrides.
type RolePermissions map[Role]Permission

// ResolvePermissions applies overrides on top of the role defaults.
// Overrides are applied in order; a later override of the same (role, permission) wins.
func ResolvePermissions(overrides []RoleOverride) RolePermissions {
	perms := make(RolePermissions, len(Roles))
	for _, role := range Roles {
		perms[role] = DefaultPermissions(role)
	}
	for _, o := range overrides {
		if o.Enabled {
			perms[o.Role] |= o.Permission
		} else {
			perms[o.Role] &^= o.Permission
		}
	}
	return perms
}

// Of returns the permissions resolved for role.
func (rp RolePermissions) Of(role Role) Permission {
	return rp[role]
}
