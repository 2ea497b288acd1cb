package main

import (
	"context"
)

// assignMentor assigns the mentor `mentorEmail` to the youth `youthEmail`; an empty mentorEmail unassigns it.
func (cli *commandLine) assignMentor(youthEmail, mentorEmail string) error {
	ctx := context.Background()
	youth, err := cli.accountSvc.GetByEmail(ctx, youthEmail)
	if err != nil {
		return err
	}

	var mentorID string
	if mentorEmail != "" {
		mentor, err := cli.accountSvc.GetByEmail(ctx, mentorEmail)
		if err != nil {
			return err
		}
		mentorID = mentor.ID
	}
	_, err = cli.accountSvc.SetMentor(ctx, youth.ID, mentorID)
	return err
}
