package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
)

var activeEnrollmentStates = []string{string(course.EnrollmentActive), string(course.EnrollmentCompleted)}

type courseRepository struct {
	db sqlx.ExtContext
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db sqlx.ExtContext) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID            int    `db:"id"`
	AccountID     int    `db:"account_id"`
	Name          string `db:"name"`
	WorkflowState string `db:"workflow_state"`
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var row courseRow
	err := sqlx.GetContext(ctx, repo.db, &row, `SELECT id, account_id, name, workflow_state FROM course WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return course.Course{}, course.ErrNotFound
	}
	if err != nil {
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return course.Course{
		ID:            row.ID,
		AccountID:     row.AccountID,
		Name:          row.Name,
		WorkflowState: course.State(row.WorkflowState),
	}, nil
}

type enrollmentRow struct {
	ID               int      `db:"id"`
	UserID           int      `db:"user_id"`
	CourseID         int      `db:"course_id"`
	SectionID        null.Int `db:"section_id"`
	Role             int      `db:"role"`
	WorkflowState    string   `db:"workflow_state"`
	LimitedToSection bool     `db:"limited_to_section"`
}

// enrollmentQuery builds the enrollment select for filter, with "?" bind vars.
func enrollmentQuery(filter course.EnrollmentFilter) (string, []interface{}, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CourseID != 0 {
		where = append(where, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.Roles) > 0 {
		roles := make([]int, len(filter.Roles))
		for i, r := range filter.Roles {
			roles[i] = int(r)
		}
		where = append(where, "role IN (?)")
		args = append(args, roles)
	}
	if filter.ActiveOnly {
		where = append(where, "workflow_state IN (?)")
		args = append(args, activeEnrollmentStates)
	}

	query := `SELECT id, user_id, course_id, section_id, role, workflow_state, limited_to_section FROM enrollment`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`
	if len(args) == 0 {
		return query, nil, nil
	}
	return sqlx.In(query, args...)
}

func (repo *courseRepository) QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	query, args, err := enrollmentQuery(filter)
	if err != nil {
		return nil, errors.Wrap(err, "building enrollments query")
	}
	var rows []enrollmentRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	enrollments := make([]course.Enrollment, len(rows))
	for i, row := range rows {
		enrollments[i] = course.Enrollment{
			ID:               row.ID,
			UserID:           row.UserID,
			CourseID:         row.CourseID,
			SectionID:        row.SectionID.Int,
			Role:             account.Role(row.Role),
			WorkflowState:    course.EnrollmentState(row.WorkflowState),
			LimitedToSection: row.LimitedToSection,
		}
	}
	return enrollments, nil
}

type assignmentRow struct {
	ID             int       `db:"id"`
	CourseID       int       `db:"course_id"`
	Title          string    `db:"title"`
	PointsPossible float64   `db:"points_possible"`
	DueAt          null.Time `db:"due_at"`
	UnlockAt       null.Time `db:"unlock_at"`
	Position       int       `db:"position"`
}

func (repo *courseRepository) QueryAssignments(ctx context.Context, courseID int) ([]course.Assignment, error) {
	var rows []assignmentRow
	err := sqlx.SelectContext(ctx, repo.db, &rows, `SELECT id, course_id, title, points_possible, due_at, unlock_at, position
		FROM assignment WHERE course_id = $1 ORDER BY position, id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	assignments := make([]course.Assignment, len(rows))
	for i, row := range rows {
		assignments[i] = course.Assignment{
			ID:             row.ID,
			CourseID:       row.CourseID,
			Title:          row.Title,
			PointsPossible: row.PointsPossible,
			DueAt:          timeOrZero(row.DueAt),
			UnlockAt:       timeOrZero(row.UnlockAt),
			Position:       row.Position,
		}
	}
	return assignments, nil
}

type submissionRow struct {
	AssignmentID  int          `db:"assignment_id"`
	UserID        int          `db:"user_id"`
	Score         null.Float64 `db:"score"`
	SubmittedAt   null.Time    `db:"submitted_at"`
	GradedAt      null.Time    `db:"graded_at"`
	WorkflowState string       `db:"workflow_state"`
}

func (repo *courseRepository) QuerySubmissions(ctx context.Context, assignmentID int) ([]course.Submission, error) {
	var rows []submissionRow
	err := sqlx.SelectContext(ctx, repo.db, &rows, `SELECT assignment_id, user_id, score, submitted_at, graded_at, workflow_state
		FROM submission WHERE assignment_id = $1 ORDER BY user_id`, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	submissions := make([]course.Submission, len(rows))
	for i, row := range rows {
		submissions[i] = course.Submission{
			AssignmentID:  row.AssignmentID,
			UserID:        row.UserID,
			Score:         row.Score.Ptr(),
			SubmittedAt:   timeOrZero(row.SubmittedAt),
			GradedAt:      timeOrZero(row.GradedAt),
			WorkflowState: row.WorkflowState,
		}
	}
	return submissions, nil
}
