package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/healing"
)

type healingApi struct {
	svc      *healing.Service
	validate *validator.Validate
}

func registerHealingAPI(g *echo.Group, svc *healing.Service, validate *validator.Validate) {
	api := healingApi{svc: svc, validate: validate}

	g.POST("/mood", api.checkInMood)
	g.GET("/journal", api.queryJournal)
	g.POST("/journal", api.createJournalEntry)
	g.GET("/support/posts", api.queryPosts)
	g.POST("/support/posts", api.createPost)
	g.POST("/support/posts/:id/reply", api.reply)
}

func (api *healingApi) checkInMood(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data healing.NewMoodCheckIn
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMoodCheckIn")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	mood, err := api.svc.CheckInMood(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "checking in mood")
	}
	return ctx.JSON(http.StatusCreated, mood)
}

func (api *healingApi) queryJournal(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	entries, err := api.svc.ListJournalEntries(ctx.Request().Context(), acc.ID)
	if err != nil {
		return errors.Wrap(err, "listing journal entries")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *healingApi) createJournalEntry(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data healing.NewJournalEntry
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJournalEntry")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.svc.CreateJournalEntry(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating journal entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *healingApi) queryPosts(ctx echo.Context) error {
	posts, err := api.svc.ListPosts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing support posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *healingApi) createPost(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data healing.NewSupportPost
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupportPost")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	post, err := api.svc.CreatePost(ctx.Request().Context(), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating support post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *healingApi) reply(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	var data healing.NewSupportReply
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSupportReply")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	reply, err := api.svc.Reply(ctx.Request().Context(), ctx.Param("id"), acc.ID, data)
	if err != nil {
		return errors.Wrap(err, "replying to support post")
	}
	return ctx.JSON(http.StatusCreated, reply)
}
