package analytics

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/core/user"
)

// Decision is the outcome of the access gate: Allow or the first failing check.
type Decision int

const (
	Allow Decision = iota
	DenyServiceDisabled
	DenyCourseUnreadable
	DenyPermission
	DenyUserUnreadable
)

var decisionNames = [...]string{
	Allow:                "allowed",
	DenyServiceDisabled:  "service_disabled",
	DenyCourseUnreadable: "course_unreadable",
	DenyPermission:       "permission_denied",
	DenyUserUnreadable:   "user_unreadable",
}

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d < 0 || int(d) >= len(decisionNames) {
		return fmt.Sprintf("Decision(%d)", int(d))
	}
	return decisionNames[d]
}

// HidesExistence reports whether the denial must look like the resource does not exist.
// Only a missing analytics permission is reported as such.
func (d Decision) HidesExistence() bool {
	return !d.Allowed() && d != DenyPermission
}

// DeniedError is returned when the gate refuses a request.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return "analytics access denied: " + e.Decision.String()
}

// IsDenied returns the gate decision carried by err, if any.
func IsDenied(err error) (Decision, bool) {
	if derr, ok := errors.Cause(err).(*DeniedError); ok {
		return derr.Decision, true
	}
	return Allow, false
}

type (
	AccountSource interface {
		GetAccount(ctx context.Context, id int) (account.Account, error)
		QueryRoleOverrides(ctx context.Context, accountID int) ([]account.RoleOverride, error)
	}

	EnrollmentSource interface {
		QueryEnrollments(ctx context.Context, filter course.EnrollmentFilter) ([]course.Enrollment, error)
	}

	// Viewer is the requesting user. Capabilities are passed explicitly rather than
	// looked up so the gate can be exercised without an account role graph.
	// They only hold on the courses of AccountID.
	Viewer struct {
		UserID       int
		AccountID    int
		Capabilities user.Capabilities
	}

	AccessRequest struct {
		Course       course.Course
		Viewer       Viewer
		TargetUserID int
		Kind         Kind
	}

	Gate struct {
		accounts    AccountSource
		enrollments EnrollmentSource
	}
)

// analyticsPermission is what an enrollment role needs to see other users' analytics.
const analyticsPermission = account.PermViewAnalytics | account.PermReadAsAdmin

func NewGate(accounts AccountSource, enrollments EnrollmentSource) *Gate {
	return &Gate{accounts: accounts, enrollments: enrollments}
}

// Decide evaluates, in order, the service toggle, course readability, the analytics permission
// and the target user visibility, stopping at the first failure.
// Errors are data-access failures only; denials are reported through the Decision.
func (g *Gate) Decide(ctx context.Context, req AccessRequest) (Decision, error) {
	decision, scope, err := g.decideCourse(ctx, req.Course, req.Viewer)
	if err != nil || !decision.Allowed() {
		return decision, err
	}

	targets, err := g.enrollments.QueryEnrollments(ctx, course.EnrollmentFilter{
		CourseID:   req.Course.ID,
		UserID:     req.TargetUserID,
		ActiveOnly: true,
	})
	if err != nil {
		return Allow, errors.Wrap(err, "querying target enrollments")
	}
	if !scope.canSee(targets) {
		return DenyUserUnreadable, nil
	}
	return Allow, nil
}

// viewScope is what remains of the viewer once the course level checks passed.
type viewScope struct {
	unrestricted bool
	grants       []course.Enrollment // enrollments carrying the analytics permission
}

func (s viewScope) canSee(targets []course.Enrollment) bool {
	for _, tgt := range targets {
		if !tgt.IsActive() {
			continue
		}
		if s.unrestricted {
			return true
		}
		for _, grant := range s.grants {
			if SharesVisibilityScope(grant, tgt) {
				return true
			}
		}
	}
	return false
}

func (g *Gate) decideCourse(ctx context.Context, crs course.Course, viewer Viewer) (Decision, viewScope, error) {
	var scope viewScope

	acct, err := g.accounts.GetAccount(ctx, crs.AccountID)
	if err != nil {
		return Allow, scope, errors.Wrap(err, "getting account")
	}
	if !acct.AnalyticsEnabled {
		return DenyServiceDisabled, scope, nil
	}

	enrollments, err := g.enrollments.QueryEnrollments(ctx, course.EnrollmentFilter{
		CourseID:   crs.ID,
		UserID:     viewer.UserID,
		ActiveOnly: true,
	})
	if err != nil {
		return Allow, scope, errors.Wrap(err, "querying viewer enrollments")
	}
	caps := viewer.capabilitiesIn(crs.AccountID)
	if !courseReadable(crs, enrollments, caps) {
		return DenyCourseUnreadable, scope, nil
	}

	if caps.Has(user.CapBypassOverrides) {
		scope.unrestricted = true
		return Allow, scope, nil
	}
	overrides, err := g.accounts.QueryRoleOverrides(ctx, acct.ID)
	if err != nil {
		return Allow, scope, errors.Wrap(err, "querying role overrides")
	}
	perms := account.ResolvePermissions(overrides)
	for _, enr := range enrollments {
		if perms.Of(enr.Role).Has(analyticsPermission) {
			scope.grants = append(scope.grants, enr)
		}
	}
	if len(scope.grants) == 0 {
		return DenyPermission, scope, nil
	}
	return Allow, scope, nil
}

// capabilitiesIn returns the viewer capabilities on the courses of accountID: none outside their own account.
func (v Viewer) capabilitiesIn(accountID int) user.Capabilities {
	if v.AccountID == 0 || v.AccountID != accountID {
		return 0
	}
	return v.Capabilities
}

func courseReadable(crs course.Course, enrollments []course.Enrollment, caps user.Capabilities) bool {
	if crs.IsDeleted() {
		return false
	}
	if caps.Has(user.CapReadCourses) {
		return true
	}
	for _, enr := range enrollments {
		if enr.IsActive() {
			return true
		}
	}
	return false
}

// SharesVisibilityScope reports whether the holder of the viewer enrollment may see the user
// of the target enrollment. Section-limited enrollments only see their own section.
func SharesVisibilityScope(viewer, target course.Enrollment) bool {
	if viewer.CourseID != target.CourseID {
		return false
	}
	if viewer.LimitedToSection {
		return viewer.SectionID == target.SectionID
	}
	return true
}
