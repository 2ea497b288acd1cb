package main

import (
	"context"
	"fmt"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

// setRole moves the account to `role`, swapping its profile.
func (cli *commandLine) setRole(email, role string) error {
	ctx := context.Background()
	acc, err := cli.accountSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc, err = cli.accountSvc.ChangeRole(ctx, acc.ID, account.Role(core.CleanString(role, true /* lower */))); err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", acc.Email, acc.Role.Label())
	return nil
}
