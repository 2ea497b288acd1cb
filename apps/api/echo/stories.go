package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/story"
)

type storyApi struct {
	svc      *story.Service
	validate *validator.Validate
}

func registerStoryAPI(g *echo.Group, svc *story.Service, validate *validator.Validate) {
	api := storyApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.POST("", api.create)
}

// query lists the stories of the "category" query param; "all" or none lists them all.
func (api *storyApi) query(ctx echo.Context) error {
	stories, err := api.svc.List(ctx.Request().Context(), ctx.QueryParam("category"))
	if err != nil {
		return errors.Wrap(err, "listing stories")
	}
	return ctx.JSON(http.StatusOK, stories)
}

func (api *storyApi) create(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data story.NewStory
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStory")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), acc, data)
	if err != nil {
		return errors.Wrap(err, "creating story")
	}
	return ctx.JSON(http.StatusCreated, s)
}
