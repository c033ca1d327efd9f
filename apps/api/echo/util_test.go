package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/masomo-analytics/apps/api/echo"
	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/analytics"
	"github.com/trezcool/masomo-analytics/core/course"
	"github.com/trezcool/masomo-analytics/core/user"
	"github.com/trezcool/masomo-analytics/storage/database/inmem"
	"github.com/trezcool/masomo-analytics/testutil"
)

const password = "Tr0ub4dor&3x"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type fixture struct {
	conf   *core.Config
	db     *inmemdb.DB
	logger *testutil.Logger
	app    *Server

	teacher, student, limitedTA, owner user.User
	classmate, otherSection            user.User
	foreignOwner                       user.User
	course, disabledCourse             course.Course
	essay                              course.Assignment
}

type failingSubmissions struct {
	analytics.CourseSource
}

func (failingSubmissions) QuerySubmissions(context.Context, int) ([]course.Submission, error) {
	return nil, errors.New("connection reset by peer")
}

func newConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "test-secret"
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = time.Hour
	return conf
}

// setup seeds one course with a teacher (section A), a TA limited to section B,
// two students in section A and one in section B; plus a course of an account with analytics off
// and the owner of an unrelated account.
func setup(t *testing.T, brokenGrades ...bool) *fixture {
	t.Helper()
	f := &fixture{conf: newConfig(), db: inmemdb.Open(), logger: &testutil.Logger{}}

	acct := f.db.AddAccount(account.Account{Name: "School", AnalyticsEnabled: true})
	off := f.db.AddAccount(account.Account{Name: "Off"})
	other := f.db.AddAccount(account.Account{Name: "Other school", AnalyticsEnabled: true})

	usrRepo := inmemdb.NewUserRepository(f.db)
	f.teacher = testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.cd", password, nil, true)
	f.student = testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.cd", password, nil, true)
	f.classmate = testutil.CreateUser(t, usrRepo, "Classmate", "classmate", "classmate@test.cd", password, nil, true)
	f.otherSection = testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", password, nil, true)
	f.limitedTA = testutil.CreateUser(t, usrRepo, "TA", "ta", "ta@test.cd", password, nil, true)
	f.owner = testutil.CreateAccountAdmin(t, usrRepo, acct.ID, "Owner", "owner", "owner@test.cd", password, []string{user.RoleAdminOwner})
	f.foreignOwner = testutil.CreateAccountAdmin(t, usrRepo, other.ID, "Foreign", "foreign", "foreign@test.cd", password, []string{user.RoleAdminOwner})
	testutil.CreateUser(t, usrRepo, "Inactive", "inactive", "inactive@test.cd", password, nil, false)
	acctRepo := inmemdb.NewAccountRepository(f.db)
	for _, a := range []account.Account{acct, off} {
		for _, role := range []account.Role{account.RoleTeacher, account.RoleTA} {
			if err := acctRepo.SaveRoleOverride(context.Background(), account.RoleOverride{
				AccountID: a.ID, Role: role, Permission: account.PermViewAnalytics, Enabled: true,
			}); err != nil {
				t.Fatalf("setup() failed: %v", err)
			}
		}
	}

	f.course = f.db.AddCourse(course.Course{AccountID: acct.ID, Name: "Biology"})
	f.disabledCourse = f.db.AddCourse(course.Course{AccountID: off.ID, Name: "Chemistry"})
	secA := f.db.AddSection(course.Section{CourseID: f.course.ID, Name: "A"})
	secB := f.db.AddSection(course.Section{CourseID: f.course.ID, Name: "B"})

	enroll := func(crs course.Course, usr user.User, sec course.Section, role account.Role, limited bool) {
		f.db.AddEnrollment(course.Enrollment{
			UserID: usr.ID, CourseID: crs.ID, SectionID: sec.ID, Role: role, LimitedToSection: limited,
		})
	}
	enroll(f.course, f.teacher, secA, account.RoleTeacher, false)
	enroll(f.course, f.limitedTA, secB, account.RoleTA, true)
	enroll(f.course, f.student, secA, account.RoleStudent, false)
	enroll(f.course, f.classmate, secA, account.RoleStudent, false)
	enroll(f.course, f.otherSection, secB, account.RoleStudent, false)
	enroll(f.disabledCourse, f.teacher, course.Section{}, account.RoleTeacher, false)
	enroll(f.disabledCourse, f.student, course.Section{}, account.RoleStudent, false)

	f.essay = f.db.AddAssignment(course.Assignment{CourseID: f.course.ID, Title: "Essay", PointsPossible: 10, Position: 1})
	for i, usr := range []user.User{f.student, f.classmate, f.otherSection} {
		score := float64(6 + i)
		f.db.AddSubmission(course.Submission{
			AssignmentID: f.essay.ID,
			UserID:       usr.ID,
			Score:        &score,
			SubmittedAt:  time.Date(2026, 2, 27, 10, 30, 0, 0, time.UTC),
		})
	}

	var courses analytics.CourseSource = inmemdb.NewCourseRepository(f.db)
	if len(brokenGrades) > 0 && brokenGrades[0] {
		courses = failingSubmissions{CourseSource: courses}
	}
	analyticsSvc, err := analytics.NewService(analytics.Deps{
		Courses:     courses,
		Accounts:    acctRepo,
		Activity:    inmemdb.NewActivityRepository(f.db),
		Logger:      f.logger,
		Concurrency: f.conf.Analytics.Concurrency,
	})
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	f.app = NewServer(ServerDeps{
		Conf:           f.conf,
		Logger:         f.logger,
		UserSvc:        user.NewService(usrRepo),
		AnalyticsSvc:   analyticsSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return f
}

func (f *fixture) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(f.conf, GetUserClaims(f.conf, usr))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	if len(b1) == 0 || len(b2) == 0 {
		return len(b1) == len(b2), nil
	}
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
