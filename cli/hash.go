package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitorus/pdfcertify/auth"
	urfave "github.com/urfave/cli/v3"
)

func hashPasswordCommand() *urfave.Command {
	return &urfave.Command{
		Name:  "hash-password",
		Usage: "print the bcrypt hash of a password for the [auth] configuration section",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "password", Usage: "password to hash", Sources: urfave.EnvVars("PDFCERTIFY_PASSWORD")},
		},
		Action: func(_ context.Context, cmd *urfave.Command) error {
			password := cmd.String("password")
			if password == "" {
				return errors.New("missing --password")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, hash)
			return err
		},
	}
}
