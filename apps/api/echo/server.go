package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/dashboard"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/core/story"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		Blocklist       core.TokenBlocklist
		AccountSvc      *account.Service
		ProfileSvc      *profile.Service
		NotificationSvc *notification.Service
		HealingSvc      *healing.Service
		MicrograntSvc   *microgrant.Service
		LearningSvc     *learning.Service
		StorySvc        *story.Service
		DashboardSvc    *dashboard.Service
		Validate        *validator.Validate
		Translator      ut.Translator
	}

	Server struct {
		ServerDeps
		app            *echo.Echo
		auth           *authenticator
		serverErrors   chan error
		shutdownSignal chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps:     deps,
		app:            echo.New(),
		serverErrors:   make(chan error, 1),
		shutdownSignal: make(chan os.Signal, 1),
	}
	s.auth = newAuthenticator(deps.Conf, deps.Blocklist, deps.AccountSvc)
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.Conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)

	s.app.GET("/", s.home)

	authed := []echo.MiddlewareFunc{s.auth.jwt, s.auth.accountMiddleware}
	registerAccountAPI(s.app.Group("/accounts"), authed, s.auth, s.AccountSvc, s.ProfileSvc, s.Validate)
	registerMentorAPI(s.app.Group("/mentors"), authed, s.ProfileSvc)
	registerDashboardAPI(s.app.Group("/dashboard", authed...), s.DashboardSvc)
	registerNotificationAPI(s.app.Group("/notifications", authed...), s.NotificationSvc)
	registerHealingAPI(s.app.Group("/healing", authed...), s.HealingSvc, s.Validate)
	registerMicrograntAPI(s.app.Group("/microgrants"), authed, s.MicrograntSvc, s.Validate)
	registerLearningAPI(s.app.Group("/learning", authed...), s.LearningSvc, s.Validate)
	registerStoryAPI(s.app.Group("/stories", authed...), s.StorySvc, s.Validate)
}

// Start listens on the configured address; listening errors are sent to Errors().
func (s *Server) Start() {
	s.Logger.Info("API listening on " + s.Conf.Server.Address)
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.serverErrors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.serverErrors
}

// ShutdownSignal receives OS interrupts, as well as the shutdown requests raised while handling requests.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownSignal
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdownSignal <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdownSignal)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// IssueToken returns a signed auth token for `acc`.
func (s *Server) IssueToken(acc account.Account) (string, error) {
	return s.auth.issueToken(acc)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}
