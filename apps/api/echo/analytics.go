package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/analytics"
	"github.com/trezcool/masomo-analytics/core/user"
)

type analyticsApi struct {
	svc      *analytics.Service
	usrSvc   *user.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerAnalyticsAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *analytics.Service,
	usrSvc *user.Service,
	validate *validator.Validate,
	conf *core.Config,
) {
	api := analyticsApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
		conf:     conf,
	}

	g.GET("/analytics/:kind/courses/:course_id/users/:user_id", api.studentInCourse, jwt)
	g.GET("/courses/:course_id/analytics", api.courseLink, jwt)
}

// Handlers

// studentInCourse answers with the analytics records, or a bare status when access is refused.
func (api *analyticsApi) studentInCourse(ctx echo.Context) error {
	var data AnalyticsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyticsRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	viewer, err := getContextViewer(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context viewer")
	}

	res, err := api.svc.Handle(ctx.Request().Context(), analytics.Request{
		CourseID: data.CourseID,
		UserID:   data.UserID,
		Kind:     analytics.Kind(data.Kind),
		Viewer:   viewer,
	})
	if err != nil {
		return errors.Wrap(err, "handling analytics request")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *analyticsApi) courseLink(ctx echo.Context) error {
	var data CourseAnalyticsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseAnalyticsRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	viewer, err := getContextViewer(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context viewer")
	}

	ok, err := api.svc.Available(ctx.Request().Context(), data.CourseID, viewer)
	if err != nil {
		return errors.Wrap(err, "checking analytics availability")
	}
	var resp CourseAnalyticsResponse
	if ok {
		resp.Analytics = &AnalyticsLink{Link: api.conf.CourseAnalyticsLink(data.CourseID)}
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	AnalyticsRequest struct {
		Kind     string `param:"kind" validate:"oneof=participation assignments messaging"`
		CourseID int    `param:"course_id" validate:"gt=0"`
		UserID   int    `param:"user_id" validate:"gt=0"`
	}

	CourseAnalyticsRequest struct {
		CourseID int `param:"course_id" validate:"gt=0"`
	}

	AnalyticsLink struct {
		Link string `json:"link"`
	}

	CourseAnalyticsResponse struct {
		Analytics *AnalyticsLink `json:"analytics"`
	}
)
