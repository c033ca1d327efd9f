package course

import (
	"time"

	"github.com/trezcool/masomo-analytics/core/account"
)

type State string

const (
	StateCreated   State = "created" // unpublished
	StateAvailable State = "available"
	StateCompleted State = "completed" // concluded
	StateDeleted   State = "deleted"
)

type Course struct {
	ID            int    `json:"id"`
	AccountID     int    `json:"account_id"`
	Name          string `json:"name"`
	WorkflowState State  `json:"workflow_state"`
}

func (c Course) IsDeleted() bool { return c.WorkflowState == StateDeleted }

// IsPublished is true once the course has been offered to students, concluded courses included.
func (c Course) IsPublished() bool {
	return c.WorkflowState == StateAvailable || c.WorkflowState == StateCompleted
}

type Section struct {
	ID       int    `json:"id"`
	CourseID int    `json:"course_id"`
	Name     string `json:"name"`
}

type EnrollmentState string

const (
	EnrollmentInvited   EnrollmentState = "invited"
	EnrollmentActive    EnrollmentState = "active"
	EnrollmentCompleted EnrollmentState = "completed"
	EnrollmentDeleted   EnrollmentState = "deleted"
)

type Enrollment struct {
	ID               int
	UserID           int
	CourseID         int
	SectionID        int
	Role             account.Role
	WorkflowState    EnrollmentState
	LimitedToSection bool
}

// IsActive reports whether the enrollment counts for analytics: active or completed.
func (e Enrollment) IsActive() bool {
	return e.WorkflowState == EnrollmentActive || e.WorkflowState == EnrollmentCompleted
}

type Assignment struct {
	ID             int
	CourseID       int
	Title          string
	PointsPossible float64
	DueAt          time.Time // zero when unset
	UnlockAt       time.Time // zero when unset
	Position       int
}

type Submission struct {
	AssignmentID  int
	UserID        int
	Score         *float64  // nil until graded
	SubmittedAt   time.Time // zero when never submitted
	GradedAt      time.Time // zero when never graded
	WorkflowState string
}

// IsGraded reports whether the submission contributes to the score population.
func (s Submission) IsGraded() bool { return s.Score != nil }

// EnrollmentFilter applies AND on its non-zero fields.
type EnrollmentFilter struct {
	CourseID   int
	UserID     int
	Roles      []account.Role
	ActiveOnly bool
}

func (f EnrollmentFilter) Match(e Enrollment) bool {
	if f.CourseID != 0 && e.CourseID != f.CourseID {
		return false
	}
	if f.UserID != 0 && e.UserID != f.UserID {
		return false
	}
	if f.ActiveOnly && !e.IsActive() {
		return false
	}
	if len(f.Roles) > 0 {
		for _, r := range f.Roles {
			if e.Role == r {
				return true
			}
		}
		return false
	}
	return true
}
