package main

import (
	"context"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	_, err := cli.accountSvc.SetPassword(context.Background(), email, pwd)
	return err
}
