package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/haven/apps/api/echo"
	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/dashboard"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/core/story"
	appfs "github.com/trezcool/haven/fs"
	"github.com/trezcool/haven/services/broker"
	emailsvc "github.com/trezcool/haven/services/email"
	logsvc "github.com/trezcool/haven/services/logger"
	"github.com/trezcool/haven/services/tokenstore"
	"github.com/trezcool/haven/storage/database"
	inmemdb "github.com/trezcool/haven/storage/database/inmem"
	sqlxrepos "github.com/trezcool/haven/storage/database/sqlx"
)

type repositories struct {
	tx            core.Transactor
	accounts      account.Repository
	profiles      profile.Repository
	notifications notification.Repository
	healing       healing.Repository
	microgrants   microgrant.Repository
	learning      learning.Repository
	stories       story.Repository
	close         func() error
}

func main() {
	inMem := flag.Bool("inmem", false, "keep data in memory instead of PostgreSQL")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		panic(fmt.Sprintf("setting up zap logger: %v", err))
	}
	logger := logsvc.NewRollbarLogger(zl.Named("API"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(zl.Named("DB"), conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	var repos repositories
	if *inMem {
		repos = inMemRepositories()
	} else if repos, err = sqlRepositories(conf); err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up token blocklist
	var blocklist core.TokenBlocklist = tokenstore.NewMemoryBlocklist()
	if conf.Redis.Address != "" {
		client := tokenstore.NewRedisClient(conf)
		defer func() { _ = client.Close() }()
		blocklist = tokenstore.NewRedisBlocklist(client)
	}

	// set up notification publisher
	var publishers []notification.Publisher
	if conf.AMQP.URL != "" {
		pub, err := broker.NewPublisher(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up publisher: %v", err), err)
		}
		defer func() { _ = pub.Close() }()
		publishers = append(publishers, pub)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	provisioner := profile.NewProvisioner(repos.profiles)
	accountSvc := account.NewService(repos.tx, repos.accounts, provisioner, mailSvc, conf)
	profileSvc := profile.NewService(repos.tx, repos.profiles, accountSvc, validate)
	notificationSvc := notification.NewService(repos.notifications, logger, publishers...)
	healingSvc := healing.NewService(repos.healing, notificationSvc)
	micrograntSvc := microgrant.NewService(repos.microgrants, notificationSvc)
	learningSvc := learning.NewService(repos.learning)
	storySvc := story.NewService(repos.stories)
	dashboardSvc := dashboard.NewService(healingSvc, learningSvc, micrograntSvc, notificationSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, conf, logger)

	account.LoadCommonPasswords(appfs.FS, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Blocklist:       blocklist,
			AccountSvc:      accountSvc,
			ProfileSvc:      profileSvc,
			NotificationSvc: notificationSvc,
			HealingSvc:      healingSvc,
			MicrograntSvc:   micrograntSvc,
			LearningSvc:     learningSvc,
			StorySvc:        storySvc,
			DashboardSvc:    dashboardSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func sqlRepositories(conf *core.Config) (repositories, error) {
	db, err := setUpDB(conf)
	if err != nil {
		return repositories{}, err
	}
	sdb := sqlxrepos.NewDB(db)
	return repositories{
		tx:            sdb,
		accounts:      sqlxrepos.NewAccountRepository(sdb),
		profiles:      sqlxrepos.NewProfileRepository(sdb),
		notifications: sqlxrepos.NewNotificationRepository(sdb),
		healing:       sqlxrepos.NewHealingRepository(sdb),
		microgrants:   sqlxrepos.NewMicrograntRepository(sdb),
		learning:      sqlxrepos.NewLearningRepository(sdb),
		stories:       sqlxrepos.NewStoryRepository(sdb),
		close:         db.Close,
	}, nil
}

func inMemRepositories() repositories {
	db := inmemdb.Open()
	return repositories{
		tx:            db,
		accounts:      inmemdb.NewAccountRepository(db),
		profiles:      inmemdb.NewProfileRepository(db),
		notifications: inmemdb.NewNotificationRepository(db),
		healing:       inmemdb.NewHealingRepository(db),
		microgrants:   inmemdb.NewMicrograntRepository(db),
		learning:      inmemdb.NewLearningRepository(db),
		stories:       inmemdb.NewStoryRepository(db),
		close:         func() error { return nil },
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
