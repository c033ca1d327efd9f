// Package inmemdb implements every repository on top of in-memory tables, for development and tests.
package inmemdb

import (
	"sync"
	"time"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/core/user"
)

type (
	// PageView is one page request of a user in a course.
	PageView struct {
		CourseID     int
		UserID       int
		ViewedAt     time.Time
		Participated bool
	}

	// Message is a conversation message sent in the context of a course.
	Message struct {
		CourseID    int
		SenderID    int
		RecipientID int
		SentAt      time.Time
	}

	// DB holds the tables. Every repository built on the same DB sees the same data.
	DB struct {
		mu    sync.RWMutex
		pkSeq int

		users       map[int]*user.User
		accounts    map[int]*account.Account
		overrides   []account.RoleOverride
		courses     map[int]*course.Course
		sections    []course.Section
		enrollments []course.Enrollment
		assignments []course.Assignment
		submissions []course.Submission
		pageViews   []PageView
		messages    []Message
	}
)

func Open() *DB {
	return &DB{
		users:    make(map[int]*user.User),
		accounts: make(map[int]*account.Account),
		courses:  make(map[int]*course.Course),
	}
}

func (db *DB) nextID() int {
	db.pkSeq++
	return db.pkSeq
}

// The Add* methods seed the tables, assigning an id when the given one is zero.

func (db *DB) AddAccount(acct account.Account) account.Account {
	db.mu.Lock()
	defer db.mu.Unlock()
	if acct.ID == 0 {
		acct.ID = db.nextID()
	}
	db.accounts[acct.ID] = &acct
	return acct
}

func (db *DB) AddCourse(crs course.Course) course.Course {
	db.mu.Lock()
	defer db.mu.Unlock()
	if crs.ID == 0 {
		crs.ID = db.nextID()
	}
	if crs.WorkflowState == "" {
		crs.WorkflowState = course.StateAvailable
	}
	db.courses[crs.ID] = &crs
	return crs
}

func (db *DB) AddSection(sec course.Section) course.Section {
	db.mu.Lock()
	defer db.mu.Unlock()
	if sec.ID == 0 {
		sec.ID = db.nextID()
	}
	db.sections = append(db.sections, sec)
	return sec
}

func (db *DB) AddEnrollment(enr course.Enrollment) course.Enrollment {
	db.mu.Lock()
	defer db.mu.Unlock()
	if enr.ID == 0 {
		enr.ID = db.nextID()
	}
	if enr.WorkflowState == "" {
		enr.WorkflowState = course.EnrollmentActive
	}
	db.enrollments = append(db.enrollments, enr)
	return enr
}

func (db *DB) AddAssignment(asg course.Assignment) course.Assignment {
	db.mu.Lock()
	defer db.mu.Unlock()
	if asg.ID == 0 {
		asg.ID = db.nextID()
	}
	db.assignments = append(db.assignments, asg)
	return asg
}

// AddSubmission replaces the current submission of the user for the assignment, if any.
func (db *DB) AddSubmission(sub course.Submission) course.Submission {
	db.mu.Lock()
	defer db.mu.Unlock()
	if sub.WorkflowState == "" {
		sub.WorkflowState = "submitted"
	}
	for i, s := range db.submissions {
		if s.AssignmentID == sub.AssignmentID && s.UserID == sub.UserID {
			db.submissions[i] = sub
			return sub
		}
	}
	db.submissions = append(db.submissions, sub)
	return sub
}

func (db *DB) AddPageView(pv PageView) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.pageViews = append(db.pageViews, pv)
}

func (db *DB) AddMessage(msg Message) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.messages = append(db.messages, msg)
}
