package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/dashboard"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}
	g.GET("", api.retrieve)
}

func (api *dashboardApi) retrieve(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Get(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	if view == nil {
		return ctx.JSON(http.StatusOK, echo.Map{})
	}
	return ctx.JSON(http.StatusOK, view)
}
