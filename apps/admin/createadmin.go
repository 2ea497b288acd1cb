package main

import (
	"context"
	"fmt"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

// createAdmin creates an account.RoleAdmin account; the password policy applies.
func (cli *commandLine) createAdmin(fullName, email, pwd string) error {
	na := account.NewAccount{
		FullName: fullName,
		Email:    email,
		Password: pwd,
		Role:     account.RoleAdmin,
	}
	if err := na.Validate(cli.validate); err != nil {
		return core.TranslateValidationErrors(err, cli.translator)
	}

	acc, err := cli.accountSvc.Create(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s <%s> created\n", acc.FullName, acc.Email)
	return nil
}
