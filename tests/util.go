package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	appfs "github.com/trezcool/haven/fs"
	"github.com/trezcool/haven/services/logger"
)

// Password satisfies the password policy for every account created by CreateAccount.
const Password = "Zq9!vLx#2Rw"

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		AppName:          "Haven",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Haven", Address: "noreply@test.cd"},
		FrontendBaseURL:  "http://localhost:3000",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.DisableRequestLogs = true
	conf.Server.DashboardNotificationsMax = 5
	return conf
}

// NewLogger returns a logger discarding everything.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), NewConfig())
}

// NewValidator returns a validator with the application validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	return validate, translator
}

// Setup loads the assets the services rely on: email templates & common passwords.
func Setup(conf *core.Config, logger core.Logger) {
	core.ParseEmailTemplates(appfs.FS, conf, logger)
	account.LoadCommonPasswords(appfs.FS, logger)
}

// CreateAccount stores an account with the Password; its profile is provisioned if `prov` is not nil.
func CreateAccount(
	t *testing.T,
	repo account.Repository,
	prov account.Provisioner,
	fullName, email string,
	role account.Role,
	createdAt ...time.Time,
) account.Account {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	acc := account.Account{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := acc.SetPassword(Password); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}

	ctx := context.Background()
	acc, err := repo.CreateAccount(ctx, acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	if prov != nil {
		if err = prov.Provision(ctx, acc); err != nil {
			t.Fatalf("CreateAccount() failed to provision: %v", err)
		}
	}
	return acc
}
