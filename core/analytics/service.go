// Package analytics serves the per-student course analytics: the access gate,
// the assignment analytics assembler and the request handler tying them together.
package analytics

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
)

type (
	CourseSource interface {
		GetCourse(ctx context.Context, id int) (course.Course, error)
		GradeSource
	}

	Deps struct {
		Courses     CourseSource
		Accounts    AccountSource
		Activity    ActivitySource
		Logger      core.Logger
		Concurrency int
	}

	Request struct {
		CourseID int
		UserID   int
		Kind     Kind
		Viewer   Viewer
	}

	Service struct {
		courses   CourseSource
		activity  ActivitySource
		gate      *Gate
		assembler *Assembler
		logger    core.Logger
	}
)

func NewService(deps Deps) (*Service, error) {
	err := vala.BeginValidation().Validate(
		isSet(deps.Courses != nil, "Courses"),
		isSet(deps.Accounts != nil, "Accounts"),
		isSet(deps.Activity != nil, "Activity"),
		isSet(deps.Logger != nil, "Logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "analytics service")
	}

	return &Service{
		courses:   deps.Courses,
		activity:  deps.Activity,
		gate:      NewGate(deps.Accounts, deps.Courses),
		assembler: NewAssembler(deps.Courses, deps.Concurrency),
		logger:    deps.Logger,
	}, nil
}

// Handle authorizes the request then returns the analytics of the requested kind:
// []ParticipationRecord, []AssignmentAnalytics or []MessagingRecord.
// A refusal is returned as a *DeniedError, a missing course as a not found error.
func (svc *Service) Handle(ctx context.Context, req Request) (interface{}, error) {
	crs, err := svc.courses.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, svc.fail(err, "getting course", req)
	}

	decision, err := svc.gate.Decide(ctx, AccessRequest{
		Course:       crs,
		Viewer:       req.Viewer,
		TargetUserID: req.UserID,
		Kind:         req.Kind,
	})
	if err != nil {
		return nil, svc.fail(err, "deciding access", req)
	}
	if !decision.Allowed() {
		svc.logger.Debug("analytics access denied", requestFields(req, map[string]interface{}{"reason": decision.String()}))
		return nil, &DeniedError{Decision: decision}
	}

	var result interface{}
	switch req.Kind {
	case KindAssignments:
		result, err = svc.assembler.Assemble(ctx, crs.ID, req.UserID)
	case KindParticipation:
		result, err = svc.activity.UserParticipation(ctx, crs.ID, req.UserID)
	case KindMessaging:
		result, err = svc.activity.UserMessaging(ctx, crs.ID, req.UserID)
	default:
		return nil, core.NewValidationError(errors.Errorf("unknown analytics kind %q", req.Kind))
	}
	if err != nil {
		return nil, svc.fail(err, "loading "+string(req.Kind), req)
	}
	return result, nil
}

// Available reports whether the viewer should be offered the analytics of the course:
// the course is published, the gate admits the viewer at the course level and
// at least one student is visible to them. A missing course is not available.
func (svc *Service) Available(ctx context.Context, courseID int, viewer Viewer) (bool, error) {
	crs, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "getting course")
	}
	if !crs.IsPublished() {
		return false, nil
	}

	decision, scope, err := svc.gate.decideCourse(ctx, crs, viewer)
	if err != nil {
		return false, errors.Wrap(err, "deciding access")
	}
	if !decision.Allowed() {
		return false, nil
	}

	students, err := svc.courses.QueryEnrollments(ctx, course.EnrollmentFilter{
		CourseID:   crs.ID,
		Roles:      []account.Role{account.RoleStudent},
		ActiveOnly: true,
	})
	if err != nil {
		return false, errors.Wrap(err, "querying student enrollments")
	}
	return scope.canSee(students), nil
}

// isSet checks an interface dependency against nil without reflecting on its dynamic type.
func isSet(set bool, name string) vala.Checker {
	return func() (bool, string) {
		return set, "Parameter was nil: " + name
	}
}

func (svc *Service) fail(err error, msg string, req Request) error {
	if !core.IsNotFound(err) {
		svc.logger.Error("analytics: "+msg, err, requestFields(req, nil))
	}
	return errors.Wrap(err, msg)
}

func requestFields(req Request, extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"course_id": req.CourseID,
		"user_id":   req.UserID,
		"kind":      string(req.Kind),
		"viewer_id": req.Viewer.UserID,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}
