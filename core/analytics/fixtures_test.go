package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/analytics"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/storage/database/inmem"
	"github.com/trezcool/masomo-analytics/testutil"
)

const (
	acctEnabled       = 1
	acctDisabled      = 2
	acctNoOverrides   = 3
	acctStudentViewer = 4

	courseMain      = 10
	courseDisabled  = 20
	courseNoOverr   = 30
	courseDeleted   = 40
	courseConcluded = 50
	courseStudents  = 60
	courseDraft     = 70
	courseEmpty     = 80

	sectionA = 100
	sectionB = 101

	teacherID   = 1
	limitedTAID = 2
	outsiderID  = 3
	ownerID     = 4
	adminID     = 5
	droppedID   = 6

	s1, s2, s3, s4, s5 = 11, 12, 13, 14, 15
)

var (
	assignmentsCourseMain = []int{1001, 1002, 1003}
	dueAt                 = time.Date(2026, 3, 1, 23, 59, 59, 500, time.FixedZone("WAT", 3600))
	submittedAt           = time.Date(2026, 2, 27, 10, 30, 15, 999, time.UTC)
)

func score(f float64) *float64 { return &f }

type world struct {
	db     *inmemdb.DB
	logger *testutil.Logger
}

// newWorld seeds:
//   - courseMain (analytics on, teacher & TA granted view_analytics): teacher in sectionA,
//     limited TA in sectionB, students s1..s4 in sectionA, s5 in sectionB, a dropped student;
//   - one course per denial path.
func newWorld(t *testing.T) *world {
	t.Helper()
	db := inmemdb.Open()

	db.AddAccount(account.Account{ID: acctEnabled, Name: "Enabled", AnalyticsEnabled: true})
	db.AddAccount(account.Account{ID: acctDisabled, Name: "Disabled"})
	db.AddAccount(account.Account{ID: acctNoOverrides, Name: "No overrides", AnalyticsEnabled: true})
	db.AddAccount(account.Account{ID: acctStudentViewer, Name: "Student viewers", AnalyticsEnabled: true})

	accounts := inmemdb.NewAccountRepository(db)
	grant := func(acctID int, role account.Role, perm account.Permission) {
		if err := accounts.SaveRoleOverride(context.Background(), account.RoleOverride{
			AccountID: acctID, Role: role, Permission: perm, Enabled: true,
		}); err != nil {
			t.Fatalf("newWorld() failed: %v", err)
		}
	}
	for _, acctID := range []int{acctEnabled, acctDisabled} {
		grant(acctID, account.RoleTeacher, account.PermViewAnalytics)
		grant(acctID, account.RoleTA, account.PermViewAnalytics)
	}
	grant(acctStudentViewer, account.RoleStudent, account.PermViewAnalytics)

	db.AddCourse(course.Course{ID: courseMain, AccountID: acctEnabled, Name: "Main"})
	db.AddCourse(course.Course{ID: courseDisabled, AccountID: acctDisabled, Name: "Disabled"})
	db.AddCourse(course.Course{ID: courseNoOverr, AccountID: acctNoOverrides, Name: "No overrides"})
	db.AddCourse(course.Course{ID: courseDeleted, AccountID: acctEnabled, Name: "Deleted", WorkflowState: course.StateDeleted})
	db.AddCourse(course.Course{ID: courseConcluded, AccountID: acctEnabled, Name: "Concluded", WorkflowState: course.StateCompleted})
	db.AddCourse(course.Course{ID: courseStudents, AccountID: acctStudentViewer, Name: "Student viewers"})
	db.AddCourse(course.Course{ID: courseDraft, AccountID: acctEnabled, Name: "Draft", WorkflowState: course.StateCreated})
	db.AddCourse(course.Course{ID: courseEmpty, AccountID: acctEnabled, Name: "Empty"})

	db.AddSection(course.Section{ID: sectionA, CourseID: courseMain, Name: "A"})
	db.AddSection(course.Section{ID: sectionB, CourseID: courseMain, Name: "B"})

	enroll := func(courseID, userID, sectionID int, role account.Role, limited bool, state course.EnrollmentState) {
		db.AddEnrollment(course.Enrollment{
			UserID:           userID,
			CourseID:         courseID,
			SectionID:        sectionID,
			Role:             role,
			WorkflowState:    state,
			LimitedToSection: limited,
		})
	}
	enroll(courseMain, teacherID, sectionA, account.RoleTeacher, false, course.EnrollmentActive)
	enroll(courseMain, limitedTAID, sectionB, account.RoleTA, true, course.EnrollmentActive)
	for _, sid := range []int{s1, s2, s3, s4} {
		enroll(courseMain, sid, sectionA, account.RoleStudent, false, course.EnrollmentActive)
	}
	enroll(courseMain, s5, sectionB, account.RoleStudent, false, course.EnrollmentCompleted)
	enroll(courseMain, droppedID, sectionA, account.RoleStudent, false, course.EnrollmentDeleted)

	for _, courseID := range []int{courseDisabled, courseNoOverr, courseDeleted, courseConcluded, courseDraft, courseEmpty} {
		enroll(courseID, teacherID, 0, account.RoleTeacher, false, course.EnrollmentActive)
		enroll(courseID, s1, 0, account.RoleStudent, false, course.EnrollmentActive)
	}
	enroll(courseStudents, s1, 0, account.RoleStudent, false, course.EnrollmentActive)
	enroll(courseStudents, s2, 0, account.RoleStudent, false, course.EnrollmentActive)

	// courseMain grades: scores 24..40 for s1..s5, plus scores that must stay out of the population.
	db.AddAssignment(course.Assignment{ID: assignmentsCourseMain[2], CourseID: courseMain, Title: "Ungraded", PointsPossible: 10, Position: 3})
	db.AddAssignment(course.Assignment{ID: assignmentsCourseMain[0], CourseID: courseMain, Title: "Essay", PointsPossible: 40, Position: 1, DueAt: dueAt})
	db.AddAssignment(course.Assignment{ID: assignmentsCourseMain[1], CourseID: courseMain, Title: "Quiz", PointsPossible: 10, Position: 2})

	for i, sid := range []int{s1, s2, s3, s4, s5} {
		db.AddSubmission(course.Submission{
			AssignmentID: assignmentsCourseMain[0],
			UserID:       sid,
			Score:        score(float64(24 + 4*i)),
			SubmittedAt:  submittedAt,
			GradedAt:     submittedAt.Add(time.Hour),
		})
	}
	db.AddSubmission(course.Submission{AssignmentID: assignmentsCourseMain[0], UserID: teacherID, Score: score(100)})
	db.AddSubmission(course.Submission{AssignmentID: assignmentsCourseMain[0], UserID: droppedID, Score: score(0)})

	// quiz: s1 submitted but not graded, s2 graded without a submit time.
	db.AddSubmission(course.Submission{AssignmentID: assignmentsCourseMain[1], UserID: s1, SubmittedAt: submittedAt})
	db.AddSubmission(course.Submission{AssignmentID: assignmentsCourseMain[1], UserID: s2, Score: score(7), GradedAt: submittedAt})

	return &world{db: db, logger: &testutil.Logger{}}
}

func (w *world) service(t *testing.T) *analytics.Service {
	t.Helper()
	svc, err := analytics.NewService(analytics.Deps{
		Courses:     inmemdb.NewCourseRepository(w.db),
		Accounts:    inmemdb.NewAccountRepository(w.db),
		Activity:    inmemdb.NewActivityRepository(w.db),
		Logger:      w.logger,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("service() failed: %v", err)
	}
	return svc
}
