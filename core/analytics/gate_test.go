package analytics_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/analytics"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/core/user"
	"github.com/trezcool/masomo-analytics/storage/database/inmem"
)

func TestGate_Decide(t *testing.T) {
	w := newWorld(t)
	courses := inmemdb.NewCourseRepository(w.db)
	gate := analytics.NewGate(inmemdb.NewAccountRepository(w.db), courses)

	viewer := func(id int) analytics.Viewer {
		return analytics.Viewer{UserID: id}
	}
	admin := func(id, accountID int, roles ...string) analytics.Viewer {
		return analytics.Viewer{UserID: id, AccountID: accountID, Capabilities: user.CapabilitiesOf(roles)}
	}

	tests := []struct {
		name     string
		courseID int
		viewer   analytics.Viewer
		target   int
		want     analytics.Decision
	}{
		{name: "teacher sees student", courseID: courseMain, viewer: viewer(teacherID), target: s1, want: analytics.Allow},
		{name: "teacher sees concluded enrollment", courseID: courseMain, viewer: viewer(teacherID), target: s5, want: analytics.Allow},
		{name: "service disabled wins over every other check", courseID: courseDisabled, viewer: viewer(outsiderID), target: 999, want: analytics.DenyServiceDisabled},
		{name: "service disabled for enrolled teacher", courseID: courseDisabled, viewer: viewer(teacherID), target: s1, want: analytics.DenyServiceDisabled},
		{name: "outsider cannot read course", courseID: courseMain, viewer: viewer(outsiderID), target: 999, want: analytics.DenyCourseUnreadable},
		{name: "deleted course", courseID: courseDeleted, viewer: viewer(teacherID), target: s1, want: analytics.DenyCourseUnreadable},
		{name: "dropped student cannot read course", courseID: courseMain, viewer: viewer(droppedID), target: s1, want: analytics.DenyCourseUnreadable},
		{name: "student lacks permission", courseID: courseMain, viewer: viewer(s1), target: s2, want: analytics.DenyPermission},
		{name: "no override means no permission", courseID: courseNoOverr, viewer: viewer(teacherID), target: s1, want: analytics.DenyPermission},
		{name: "view_analytics alone is not enough", courseID: courseStudents, viewer: viewer(s1), target: s2, want: analytics.DenyPermission},
		{name: "admin reads but has no permission", courseID: courseMain, viewer: admin(adminID, acctEnabled, user.RoleAdmin), target: s1, want: analytics.DenyPermission},
		{name: "owner bypasses overrides", courseID: courseConcluded, viewer: admin(ownerID, acctEnabled, user.RoleAdminOwner), target: s1, want: analytics.Allow},
		{name: "owner cannot read deleted course", courseID: courseDeleted, viewer: admin(ownerID, acctEnabled, user.RoleAdminOwner), target: s1, want: analytics.DenyCourseUnreadable},
		{name: "owner of another account cannot read course", courseID: courseStudents, viewer: admin(ownerID, acctEnabled, user.RoleAdminOwner), target: s1, want: analytics.DenyCourseUnreadable},
		{name: "owner without account cannot read course", courseID: courseConcluded, viewer: admin(ownerID, 0, user.RoleAdminOwner), target: s1, want: analytics.DenyCourseUnreadable},
		{name: "unknown target", courseID: courseMain, viewer: viewer(teacherID), target: 999, want: analytics.DenyUserUnreadable},
		{name: "dropped target", courseID: courseMain, viewer: viewer(teacherID), target: droppedID, want: analytics.DenyUserUnreadable},
		{name: "section-limited TA outside section", courseID: courseMain, viewer: viewer(limitedTAID), target: s1, want: analytics.DenyUserUnreadable},
		{name: "section-limited TA inside section", courseID: courseMain, viewer: viewer(limitedTAID), target: s5, want: analytics.Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs, err := courses.GetCourse(context.Background(), tt.courseID)
			require.NoError(t, err)

			got, err := gate.Decide(context.Background(), analytics.AccessRequest{
				Course:       crs,
				Viewer:       tt.viewer,
				TargetUserID: tt.target,
				Kind:         analytics.KindAssignments,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

type failingAccounts struct {
	analytics.AccountSource
	err error
}

func (f failingAccounts) QueryRoleOverrides(context.Context, int) ([]account.RoleOverride, error) {
	return nil, f.err
}

func TestGate_Decide_dataError(t *testing.T) {
	w := newWorld(t)
	courses := inmemdb.NewCourseRepository(w.db)
	dbErr := errors.New("connection refused")
	gate := analytics.NewGate(failingAccounts{AccountSource: inmemdb.NewAccountRepository(w.db), err: dbErr}, courses)

	crs, err := courses.GetCourse(context.Background(), courseMain)
	require.NoError(t, err)

	_, err = gate.Decide(context.Background(), analytics.AccessRequest{
		Course:       crs,
		Viewer:       analytics.Viewer{UserID: teacherID},
		TargetUserID: s1,
	})
	assert.Equal(t, dbErr, errors.Cause(err))
	_, denied := analytics.IsDenied(err)
	assert.False(t, denied)
}

func TestDecision_HidesExistence(t *testing.T) {
	tests := []struct {
		decision analytics.Decision
		want     bool
	}{
		{analytics.Allow, false},
		{analytics.DenyServiceDisabled, true},
		{analytics.DenyCourseUnreadable, true},
		{analytics.DenyPermission, false},
		{analytics.DenyUserUnreadable, true},
	}
	for _, tt := range tests {
		t.Run(tt.decision.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decision.HidesExistence())
		})
	}
}

func TestSharesVisibilityScope(t *testing.T) {
	tests := []struct {
		name   string
		viewer course.Enrollment
		target course.Enrollment
		want   bool
	}{
		{
			name:   "unlimited",
			viewer: course.Enrollment{CourseID: 1, SectionID: 1},
			target: course.Enrollment{CourseID: 1, SectionID: 2},
			want:   true,
		},
		{
			name:   "limited same section",
			viewer: course.Enrollment{CourseID: 1, SectionID: 1, LimitedToSection: true},
			target: course.Enrollment{CourseID: 1, SectionID: 1},
			want:   true,
		},
		{
			name:   "limited other section",
			viewer: course.Enrollment{CourseID: 1, SectionID: 1, LimitedToSection: true},
			target: course.Enrollment{CourseID: 1, SectionID: 2},
		},
		{
			name:   "other course",
			viewer: course.Enrollment{CourseID: 1, SectionID: 1},
			target: course.Enrollment{CourseID: 2, SectionID: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.SharesVisibilityScope(tt.viewer, tt.target))
		})
	}
}
