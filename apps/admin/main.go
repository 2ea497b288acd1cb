package main

import (
	"fmt"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/profile"
	appfs "github.com/trezcool/haven/fs"
	emailsvc "github.com/trezcool/haven/services/email"
	logsvc "github.com/trezcool/haven/services/logger"
	"github.com/trezcool/haven/storage/database"
	sqlxrepos "github.com/trezcool/haven/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		panic(fmt.Sprintf("setting up zap logger: %v", err))
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(appfs.FS, conf, logger)
	account.LoadCommonPasswords(appfs.FS, logger)

	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	sdb := sqlxrepos.NewDB(db)
	profiles := sqlxrepos.NewProfileRepository(sdb)
	accountSvc := account.NewService(sdb, sqlxrepos.NewAccountRepository(sdb), profile.NewProvisioner(profiles), mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:         db,
		accountSvc: accountSvc,
		validate:   validate,
		translator: translator,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		logger.Close()
		os.Exit(1)
	}
}
