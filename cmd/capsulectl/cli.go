package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/clock"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
	"github.com/dmitrijs2005/timecapsule/internal/netx"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// env holds the process dependencies the commands use, swappable in tests.
type env struct {
	openDB       func(dsn string) (*sql.DB, error)
	repoManager  func(db *sql.DB) (repomanager.RepositoryManager, error)
	readPassword func() (string, error)
	httpClient   *http.Client
	stdout       io.Writer
}

func defaultEnv() *env {
	return &env{
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("pgx", dsn)
		},
		repoManager:  repomanager.NewPostgresRepositoryManager,
		readPassword: promptPassword,
		httpClient:   http.DefaultClient,
		stdout:       os.Stdout,
	}
}

// promptPassword reads a password without echo from a terminal, or one
// line from stdin when it is piped.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	app := &cli.App{
		Name:    "capsulectl",
		Usage:   "Time capsule server administration",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dsn",
				Aliases: []string{"d"},
				Value:   defaults.DatabaseDSN,
				EnvVars: []string{"TIMECAPSULE_DATABASE_DSN"},
				Usage:   "PostgreSQL connection string",
			},
		},
		Commands: []*cli.Command{
			migrateCmd(e),
			sweepCmd(e),
			userCmd(e),
			attachCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// withRepos opens the database named by --dsn and hands it to fn.
func (e *env) withRepos(c *cli.Context, fn func(db *sql.DB, rm repomanager.RepositoryManager) error) error {
	db, err := e.openDB(c.String("dsn"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rm, err := e.repoManager(db)
	if err != nil {
		return err
	}
	return fn(db, rm)
}

func (e *env) outputJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// migrateCmd creates the migrate command.
func migrateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					return e.withRepos(c, func(db *sql.DB, rm repomanager.RepositoryManager) error {
						if err := rm.RunMigrations(c.Context, db); err != nil {
							return err
						}
						return e.outputJSON(map[string]string{"status": "migrated"})
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(c *cli.Context) error {
					return e.withRepos(c, func(db *sql.DB, rm repomanager.RepositoryManager) error {
						if err := rm.RollbackMigration(c.Context, db); err != nil {
							return err
						}
						return e.outputJSON(map[string]string{"status": "rolled back"})
					})
				},
			},
		},
	}
}

// sweepCmd creates the sweep command.
func sweepCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Retire every capsule past its retention window once and exit",
		Action: func(c *cli.Context) error {
			return e.withRepos(c, func(db *sql.DB, rm repomanager.RepositoryManager) error {
				svc := services.NewCapsuleService(db, rm, clock.Real(), nil, logging.Nop{})
				n, err := svc.RetireOverdue(c.Context)
				if err != nil {
					return err
				}
				return e.outputJSON(map[string]int64{"retired": n})
			})
		},
	}
}

// userCmd creates the user command.
func userCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create an account (password is prompted, or read from stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "Account name"},
				},
				Action: func(c *cli.Context) error {
					password, err := e.readPassword()
					if err != nil {
						return fmt.Errorf("read password: %w", err)
					}
					return e.withRepos(c, func(db *sql.DB, rm repomanager.RepositoryManager) error {
						return addUser(c.Context, e, db, rm, c.String("username"), password)
					})
				},
			},
		},
	}
}

func addUser(ctx context.Context, e *env, db *sql.DB, rm repomanager.RepositoryManager, username, password string) error {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	svc := services.NewUserService(db, rm, cfg)
	sess, err := svc.Register(ctx, username, password)
	if err != nil {
		return err
	}
	return e.outputJSON(map[string]string{"user_id": sess.UserID, "username": username})
}

// attachCmd uploads a local file to an upload URL issued by
// POST /capsules/{id}/attachment.
func attachCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "attach",
		Usage: "Upload a file to a presigned attachment URL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true, Usage: "Presigned upload URL"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Path of the file to upload"},
			&cli.StringFlag{Name: "content-type", Value: "application/octet-stream", Usage: "Content-Type sent with the upload"},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Open(c.String("file"))
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			st, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat file: %w", err)
			}
			if err := netx.UploadToPresignedURL(c.Context, e.httpClient, c.String("url"), f, st.Size(), c.String("content-type")); err != nil {
				return err
			}
			return e.outputJSON(map[string]any{"uploaded": st.Size()})
		},
	}
}
