package course

import (
	"context"

	"github.com/trezcool/masomo-analytics/core"
)

var ErrNotFound = core.NotFound("course")

// Repository is the read side of courses, rosters and grades.
// Implementations must return snapshots: callers never mutate what they get.
type Repository interface {
	GetCourse(ctx context.Context, id int) (Course, error)
	QueryEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
	// QueryAssignments returns the course assignments ordered by position then id.
	QueryAssignments(ctx context.Context, courseID int) ([]Assignment, error)
	// QuerySubmissions returns the current submission of every user for the assignment.
	QuerySubmissions(ctx context.Context, assignmentID int) ([]Submission, error)
}
