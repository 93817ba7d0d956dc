package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"recipebox/internal/auth"
	"recipebox/internal/config"
	"recipebox/internal/repository"
	"recipebox/internal/service"
	"recipebox/internal/store"
)

type env struct {
	users   repository.UserRepository
	service service.UserService
	closeDB func() error
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	var e env
	return &cli.App{
		Name:      "usersctl",
		Usage:     "Operator tasks for the user store",
		Writer:    stdout,
		ErrWriter: stdout,
		After: func(ctx *cli.Context) error {
			return e.close()
		},
		Commands: []*cli.Command{
			migrateCmd(&e),
			createAdminCmd(&e, stdin),
			setAdminCmd(&e, "promote", "Grant the admin flag to a user", true),
			setAdminCmd(&e, "demote", "Revoke the admin flag from a user", false),
		},
	}
}

// open runs as a subcommand Before hook, which urfave/cli skips for --help.
func (e *env) open(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	users, closeDB, err := store.Open(ctx.Context, cfg)
	if err != nil {
		return err
	}
	e.users, e.closeDB = users, closeDB

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	e.service, err = service.NewUserService(users, hasher, tokens)
	return err
}

// openMigrated opens the store and makes sure the schema exists.
func (e *env) openMigrated(ctx *cli.Context) error {
	if err := e.open(ctx); err != nil {
		return err
	}
	return e.migrate(ctx)
}

func (e *env) migrate(ctx *cli.Context) error {
	if err := e.users.Init(ctx.Context); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	return nil
}

func (e *env) close() error {
	if e.closeDB == nil {
		return nil
	}
	return e.closeDB()
}

func usernameFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "username",
		Aliases:     []string{"u"},
		Usage:       "Name of the user",
		Destination: dst,
		Required:    true,
	}
}

func migrateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Create or upgrade the schema of the configured database",
		Before: e.open,
		Action: func(ctx *cli.Context) error {
			if err := e.migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "schema is up to date")
			return nil
		},
	}
}

func createAdminCmd(e *env, stdin io.Reader) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "create-admin",
		Usage:  "Create an administrator (password is read from stdin)",
		Flags:  []cli.Flag{usernameFlag(&username)},
		Before: e.openMigrated,
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(stdin)
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return errors.New("missing password from stdin")
			}
			password := strings.TrimRight(sc.Text(), "\r")
			if password == "" {
				return errors.New("missing password from stdin")
			}

			user, err := e.service.CreateAdmin(ctx.Context, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "created admin %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}

func setAdminCmd(e *env, name, usage string, admin bool) *cli.Command {
	var username string
	return &cli.Command{
		Name:   name,
		Usage:  usage,
		Flags:  []cli.Flag{usernameFlag(&username)},
		Before: e.openMigrated,
		Action: func(ctx *cli.Context) error {
			user, err := e.service.SetAdmin(ctx.Context, username, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "%s isAdmin=%t\n", user.Username, user.IsAdmin)
			return nil
		},
	}
}
