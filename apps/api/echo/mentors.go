package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/profile"
)

type mentorApi struct {
	svc *profile.Service
}

func registerMentorAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *profile.Service) {
	api := mentorApi{svc: svc}

	g.GET("", api.query)
	g.GET("/my", api.myMentor, authed...)
	g.GET("/:id", api.retrieve)
}

func (api *mentorApi) query(ctx echo.Context) error {
	mentors, err := api.svc.ListMentors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing mentors")
	}
	return ctx.JSON(http.StatusOK, mentors)
}

func (api *mentorApi) retrieve(ctx echo.Context) error {
	mentor, err := api.svc.GetMentor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting mentor")
	}
	return ctx.JSON(http.StatusOK, mentor)
}

func (api *mentorApi) myMentor(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	mentor, err := api.svc.MyMentor(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "getting assigned mentor")
	}
	return ctx.JSON(http.StatusOK, mentor)
}
