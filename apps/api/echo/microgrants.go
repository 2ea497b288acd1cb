package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/microgrant"
)

type micrograntApi struct {
	svc      *microgrant.Service
	validate *validator.Validate
}

func registerMicrograntAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *microgrant.Service, validate *validator.Validate) {
	api := micrograntApi{svc: svc, validate: validate}

	ag := g.Group("/applications", authed...)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update)
	ag.PATCH("/:id/status", api.setStatus, adminMiddleware)

	// approved stories are public
	sg := g.Group("/success-stories")
	sg.GET("", api.querySuccessStories)
	sg.POST("", api.submitSuccessStory, authed...)
	sg.PATCH("/:id/status", api.reviewSuccessStory, append(authed[:len(authed):len(authed)], adminMiddleware)...)
}

func (api *micrograntApi) query(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	apps, err := api.svc.List(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *micrograntApi) create(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data microgrant.NewApplication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Create(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *micrograntApi) retrieve(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	app, err := api.svc.Get(ctx.Request().Context(), acc.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *micrograntApi) update(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data microgrant.UpdateApplication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateApplication")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Update(ctx.Request().Context(), acc.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *micrograntApi) setStatus(ctx echo.Context) error {
	var data microgrant.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting application status")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *micrograntApi) querySuccessStories(ctx echo.Context) error {
	stories, err := api.svc.ListSuccessStories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing success stories")
	}
	return ctx.JSON(http.StatusOK, stories)
}

func (api *micrograntApi) submitSuccessStory(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data microgrant.NewSuccessStory
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSuccessStory")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	story, err := api.svc.SubmitSuccessStory(ctx.Request().Context(), acc, data)
	if err != nil {
		return errors.Wrap(err, "submitting success story")
	}
	return ctx.JSON(http.StatusCreated, story)
}

func (api *micrograntApi) reviewSuccessStory(ctx echo.Context) error {
	var data microgrant.StoryReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StoryReview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	story, err := api.svc.ReviewSuccessStory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing success story")
	}
	return ctx.JSON(http.StatusOK, story)
}
