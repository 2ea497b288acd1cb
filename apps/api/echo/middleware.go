package echoapi

import (
	"github.com/labstack/echo/v4"
)

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		acc, err := getContextAccount(ctx)
		if err != nil {
			return err
		}
		if !acc.IsAdmin() {
			return errHttpForbidden
		}
		return next(ctx)
	}
}
