package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-analytics/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryEnrollments(_ context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var enrollments []course.Enrollment
	for _, enr := range repo.db.enrollments {
		if filter.Match(enr) {
			enrollments = append(enrollments, enr)
		}
	}
	return enrollments, nil
}

func (repo *courseRepository) QueryAssignments(_ context.Context, courseID int) ([]course.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]course.Assignment, 0)
	for _, asg := range repo.db.assignments {
		if asg.CourseID == courseID {
			assignments = append(assignments, asg)
		}
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].Position != assignments[j].Position {
			return assignments[i].Position < assignments[j].Position
		}
		return assignments[i].ID < assignments[j].ID
	})
	return assignments, nil
}

func (repo *courseRepository) QuerySubmissions(_ context.Context, assignmentID int) ([]course.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var submissions []course.Submission
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID {
			if sub.Score != nil {
				score := *sub.Score
				sub.Score = &score
			}
			submissions = append(submissions, sub)
		}
	}
	return submissions, nil
}
