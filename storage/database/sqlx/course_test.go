package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
)

func Test_enrollmentQuery(t *testing.T) {
	const sel = `SELECT id, user_id, course_id, section_id, role, workflow_state, limited_to_section FROM enrollment`
	tests := []struct {
		name      string
		filter    course.EnrollmentFilter
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "no filter",
			wantQuery: sel + ` ORDER BY id`,
		},
		{
			name:      "course and user",
			filter:    course.EnrollmentFilter{CourseID: 10, UserID: 3},
			wantQuery: sel + ` WHERE course_id = ? AND user_id = ? ORDER BY id`,
			wantArgs:  []interface{}{10, 3},
		},
		{
			name: "active students",
			filter: course.EnrollmentFilter{
				CourseID:   10,
				Roles:      []account.Role{account.RoleStudent},
				ActiveOnly: true,
			},
			wantQuery: sel + ` WHERE course_id = ? AND role IN (?) AND workflow_state IN (?, ?) ORDER BY id`,
			wantArgs:  []interface{}{10, int(account.RoleStudent), "active", "completed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := enrollmentQuery(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
