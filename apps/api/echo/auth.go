package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

const (
	contextTokenKey   = "token"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
// Id identifies the token itself so that it can be revoked; Subject is the account ID.
type Claims struct {
	jwt.StandardClaims
	Email string       `json:"email,omitempty"`
	Role  account.Role `json:"role,omitempty"`
}

type authenticator struct {
	conf       *core.Config
	blocklist  core.TokenBlocklist
	accountSvc *account.Service
	jwtConfig  middleware.JWTConfig
	jwt        echo.MiddlewareFunc
}

func newAuthenticator(conf *core.Config, blocklist core.TokenBlocklist, accountSvc *account.Service) *authenticator {
	a := &authenticator{
		conf:       conf,
		blocklist:  blocklist,
		accountSvc: accountSvc,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
	a.jwt = middleware.JWTWithConfig(a.jwtConfig)
	return a
}

func (a *authenticator) claimsFor(acc account.Account) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Issuer:    a.conf.AppName,
			Subject:   acc.ID,
			ExpiresAt: now.Add(a.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: acc.Email,
		Role:  acc.Role,
	}
}

// issueToken generates a signed JWT token string representing the account claims.
func (a *authenticator) issueToken(acc account.Account) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, a.claimsFor(acc))

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// revoke blocks the token of the request until it expires.
func (a *authenticator) revoke(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	until := time.Unix(claims.ExpiresAt, 0)
	return errors.Wrap(a.blocklist.Revoke(ctx.Request().Context(), claims.Id, until), "revoking token")
}

// accountMiddleware rejects revoked tokens and loads the account the token was issued for.
// It must run after the JWT middleware.
func (a *authenticator) accountMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		revoked, err := a.blocklist.IsRevoked(ctx.Request().Context(), claims.Id)
		if err != nil {
			return errors.Wrap(err, "checking token revocation")
		}
		if revoked {
			return errUnauthorized
		}

		acc, err := a.accountSvc.GetByID(ctx.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Cause(err) == account.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "finding account by ID")
		}
		ctx.Set(contextAccountKey, acc)
		return next(ctx)
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}
	return account.Account{}, errUnauthorized
}
