package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/core/stats"
)

type (
	// AssignmentAnalytics describes one assignment of a course from the point of view of one student:
	// the score distribution of the course population and the student's own submission.
	// Distribution fields are null when no student has a score yet.
	AssignmentAnalytics struct {
		AssignmentID   int                 `json:"assignment_id"`
		Title          string              `json:"title"`
		PointsPossible float64             `json:"points_possible"`
		DueAt          null.Time           `json:"due_at"`
		UnlockAt       null.Time           `json:"unlock_at"`
		MinScore       null.Float64        `json:"min_score"`
		MaxScore       null.Float64        `json:"max_score"`
		Median         null.Float64        `json:"median"`
		FirstQuartile  null.Float64        `json:"first_quartile"`
		ThirdQuartile  null.Float64        `json:"third_quartile"`
		Submission     *SubmissionSnapshot `json:"submission"`
	}

	SubmissionSnapshot struct {
		SubmittedAt null.Time    `json:"submitted_at"`
		Score       null.Float64 `json:"score"`
	}

	GradeSource interface {
		QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error)
		QueryAssignments(ctx context.Context, courseID int) ([]course.Assignment, error)
		QuerySubmissions(ctx context.Context, assignmentID int) ([]course.Submission, error)
	}

	// Assembler builds the assignment analytics of a student.
	// It does not check access: callers go through the Gate first.
	Assembler struct {
		grades      GradeSource
		concurrency int
	}
)

// NewAssembler returns an Assembler loading up to concurrency assignments at once (unbounded when <= 0).
func NewAssembler(grades GradeSource, concurrency int) *Assembler {
	return &Assembler{grades: grades, concurrency: concurrency}
}

// Assemble returns one record per assignment of the course, in assignment order.
// Any data error fails the whole call: no partial list is returned.
func (a *Assembler) Assemble(ctx context.Context, courseID, studentID int) ([]AssignmentAnalytics, error) {
	assignments, err := a.grades.QueryAssignments(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	students, err := a.grades.QueryEnrollments(ctx, course.EnrollmentFilter{
		CourseID:   courseID,
		Roles:      []account.Role{account.RoleStudent},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying student enrollments")
	}
	population := make(map[int]struct{}, len(students))
	for _, enr := range students {
		population[enr.UserID] = struct{}{}
	}

	records := make([]AssignmentAnalytics, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, asg := range assignments {
		i, asg := i, asg
		g.Go(func() error {
			subs, err := a.grades.QuerySubmissions(gctx, asg.ID)
			if err != nil {
				return errors.Wrapf(err, "querying submissions of assignment %d", asg.ID)
			}
			records[i] = buildAssignmentAnalytics(asg, subs, population, studentID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func buildAssignmentAnalytics(
	asg course.Assignment,
	subs []course.Submission,
	population map[int]struct{},
	studentID int,
) AssignmentAnalytics {
	rec := AssignmentAnalytics{
		AssignmentID:   asg.ID,
		Title:          asg.Title,
		PointsPossible: asg.PointsPossible,
		DueAt:          nullTime(asg.DueAt),
		UnlockAt:       nullTime(asg.UnlockAt),
	}

	scores := make([]float64, 0, len(subs))
	for _, sub := range subs {
		if sub.UserID == studentID {
			rec.Submission = &SubmissionSnapshot{
				SubmittedAt: nullTime(sub.SubmittedAt),
				Score:       null.Float64FromPtr(sub.Score),
			}
		}
		if _, ok := population[sub.UserID]; ok && sub.IsGraded() {
			scores = append(scores, *sub.Score)
		}
	}

	if sum, ok := stats.Quartiles(scores); ok {
		rec.MinScore = null.Float64From(sum.Min)
		rec.MaxScore = null.Float64From(sum.Max)
		rec.Median = null.Float64From(sum.Median)
		rec.FirstQuartile = null.Float64From(sum.FirstQuartile)
		rec.ThirdQuartile = null.Float64From(sum.ThirdQuartile)
	}
	return rec
}

// nullTime reports timestamps in UTC at second precision, zero time as null.
func nullTime(t time.Time) null.Time {
	if t.IsZero() {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC().Truncate(time.Second))
}
