package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/learning"
)

type learningApi struct {
	svc      *learning.Service
	validate *validator.Validate
}

func registerLearningAPI(g *echo.Group, svc *learning.Service, validate *validator.Validate) {
	api := learningApi{svc: svc, validate: validate}

	g.GET("/courses", api.queryCourses)
	g.POST("/courses", api.createCourse, adminMiddleware)
	g.POST("/enroll", api.enroll)
	g.GET("/enrollments", api.queryEnrollments)
	g.PATCH("/enrollments/:id", api.updateProgress)
	g.GET("/achievements", api.queryAchievements)
}

func (api *learningApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.ListCourses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *learningApi) createCourse(ctx echo.Context) error {
	var data learning.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *learningApi) enroll(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data learning.EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	enrollment, err := api.svc.Enroll(ctx.Request().Context(), acc.ID, data.CourseID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enrollment)
}

func (api *learningApi) queryEnrollments(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	enrollments, err := api.svc.ListEnrollments(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *learningApi) updateProgress(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data learning.ProgressUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	enrollment, err := api.svc.UpdateProgress(ctx.Request().Context(), acc.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, enrollment)
}

func (api *learningApi) queryAchievements(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	achievements, err := api.svc.Achievements(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "listing achievements")
	}
	return ctx.JSON(http.StatusOK, achievements)
}
