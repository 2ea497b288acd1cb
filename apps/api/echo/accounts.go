package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
)

var errAdminSelfRegistration = "admin accounts cannot be self-registered"

type accountApi struct {
	auth       *authenticator
	svc        *account.Service
	profileSvc *profile.Service
	validate   *validator.Validate
}

func registerAccountAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	auth *authenticator,
	svc *account.Service,
	profileSvc *profile.Service,
	validate *validator.Validate,
) {
	api := accountApi{
		auth:       auth,
		svc:        svc,
		profileSvc: profileSvc,
		validate:   validate,
	}

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", authed...)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
	ag.GET("/profile", api.retrieveProfile)
	ag.PATCH("/profile", api.updateProfile)

	// admin endpoints
	ag.PATCH("/:id/role", api.setRole, adminMiddleware)
	ag.DELETE("/:id", api.destroy, adminMiddleware)
}

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.Role == account.RoleAdmin {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: errAdminSelfRegistration})
	}

	acc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		if core.IsValidationError(err) {
			return err
		}
		return unexpectedError(err)
	}
	token, err := api.auth.issueToken(acc)
	if err != nil {
		return unexpectedError(err)
	}

	return ctx.JSON(http.StatusCreated, AuthResponse{Account: acc, Token: token})
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == account.ErrInvalidCredentials {
			return errBadCredentials
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.issueToken(acc)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, AuthResponse{Account: acc, Token: token})
}

func (api *accountApi) logout(ctx echo.Context) error {
	if err := api.auth.revoke(ctx); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) retrieveProfile(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	view, err := api.profileSvc.Get(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *accountApi) updateProfile(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}

	// decoded by hand: the accepted fields depend on the profile variant
	data := make(map[string]json.RawMessage)
	if ctx.Request().ContentLength != 0 {
		if err = json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
			return core.NewValidationError(errors.New("request body must be a JSON object"))
		}
	}

	view, err := api.profileSvc.Update(ctx.Request().Context(), acc, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *accountApi) setRole(ctx echo.Context) error {
	var data SetRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetRoleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.ChangeRole(ctx.Request().Context(), ctx.Param("id"), data.Role)
	if err != nil {
		return errors.Wrap(err, "changing role")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) destroy(ctx echo.Context) error {
	// Say No to Suicide! ctxAccount cannot delete themselves
	ctxAcc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") == ctxAcc.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// unexpectedError reports a server error whose message reaches the client.
func unexpectedError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "unexpected error: "+err.Error()).SetInternal(err)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	AuthResponse struct {
		Token   string          `json:"token"`
		Account account.Account `json:"account"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	SetRoleRequest struct {
		Role account.Role `json:"role" validate:"required,role"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (sr *SetRoleRequest) Validate(validate *validator.Validate) error {
	sr.Role = account.Role(core.CleanString(string(sr.Role), true /* lower */))
	return validate.Struct(sr)
}
