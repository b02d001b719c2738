package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/waste3d/codelearn/internal/domain"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// accounts is the part of the auth use case the CLI drives.
type accounts interface {
	SetAdmin(ctx context.Context, email string, isAdmin bool) (*domain.Profile, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

type commandLine struct {
	out      io.Writer
	migrate  func(ctx context.Context) error
	accounts func(ctx context.Context) (accounts, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                     - apply pending database migrations")
	fmt.Fprintln(cli.out, "  grantadmin -email EMAIL     - allow the user to author courses")
	fmt.Fprintln(cli.out, "  revokeadmin -email EMAIL    - take course authoring away from the user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL  - set a new password, prompted next")
}

func (cli *commandLine) emailFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	email := fs.String("email", "", "The user's email.")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *email == "" {
		fs.Usage()
		return "", errHelp
	}
	return *email, nil
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil

	case "grantadmin", "revokeadmin":
		email, err := cli.emailFlag(args[1], args[2:])
		if err != nil {
			return err
		}
		return cli.setAdmin(ctx, email, args[1] == "grantadmin")

	case "resetpassword":
		email, err := cli.emailFlag(args[1], args[2:])
		if err != nil {
			return err
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			return errHelp
		}
		return cli.resetPassword(ctx, email, string(pwd))

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) setAdmin(ctx context.Context, email string, isAdmin bool) error {
	acc, err := cli.accounts(ctx)
	if err != nil {
		return err
	}
	p, err := acc.SetAdmin(ctx, email, isAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is_admin=%t\n", p.Email, p.IsAdmin)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	acc, err := cli.accounts(ctx)
	if err != nil {
		return err
	}
	if err := acc.ResetPassword(ctx, email, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password updated for %s\n", email)
	return nil
}
