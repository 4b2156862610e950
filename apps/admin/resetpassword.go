package main

import (
	"context"

	"github.com/elimulabs/tuzo/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	std, err := cli.students.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err := std.SetPassword(pwd, cli.conf.BcryptCost); err != nil {
		return err
	}
	return cli.students.UpdateStudentPassword(ctx, std.ID, std.PasswordHash)
}
