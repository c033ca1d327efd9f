package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePermissions(t *testing.T) {
	tests := []struct {
		name      string
		overrides []RoleOverride
		role      Role
		want      Permission
	}{
		{name: "teacher defaults", role: RoleTeacher, want: PermReadAsAdmin | PermReadRoster},
		{name: "student defaults", role: RoleStudent, want: PermReadRoster},
		{name: "unknown role", role: RoleUnknown, want: 0},
		{
			name:      "grant analytics",
			overrides: []RoleOverride{{Role: RoleTeacher, Permission: PermViewAnalytics, Enabled: true}},
			role:      RoleTeacher,
			want:      PermReadAsAdmin | PermReadRoster | PermViewAnalytics,
		},
		{
			name: "later override wins",
			overrides: []RoleOverride{
				{Role: RoleTeacher, Permission: PermViewAnalytics, Enabled: true},
				{Role: RoleTeacher, Permission: PermViewAnalytics, Enabled: false},
			},
			role: RoleTeacher,
			want: PermReadAsAdmin | PermReadRoster,
		},
		{
			name:      "override only touches its role",
			overrides: []RoleOverride{{Role: RoleTA, Permission: PermViewAnalytics, Enabled: true}},
			role:      RoleTeacher,
			want:      PermReadAsAdmin | PermReadRoster,
		},
		{
			name:      "revoke a default",
			overrides: []RoleOverride{{Role: RoleStudent, Permission: PermReadRoster, Enabled: false}},
			role:      RoleStudent,
			want:      0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePermissions(tt.overrides).Of(tt.role))
		})
	}
}

func TestParseRoleAndPermission(t *testing.T) {
	role, err := ParseRole(" TA ")
	assert.NoError(t, err)
	assert.Equal(t, RoleTA, role)

	_, err = ParseRole("janitor")
	assert.Error(t, err)

	perm, err := ParsePermission("view_analytics")
	assert.NoError(t, err)
	assert.Equal(t, PermViewAnalytics, perm)
	assert.Equal(t, "read_as_admin|view_analytics", (PermReadAsAdmin | PermViewAnalytics).String())

	_, err = ParsePermission("lol")
	assert.Error(t, err)
}
