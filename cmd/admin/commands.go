package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	appMigrations "github.com/yigit/schooldesk/internal/app/migrations"
	appRepos "github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/bootstrap"
	"github.com/yigit/schooldesk/internal/config"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/jobs"
	"github.com/yigit/schooldesk/internal/seed"
)

var errPasswordMismatch = errors.New("passwords do not match")

type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
	Close() error
}

// admin holds the replaceable pieces of the CLI
type admin struct {
	out          io.Writer
	loadConfig   func() (*config.Config, zerolog.Logger, error)
	openDB       func(cfg *config.Config) (*pgxpool.Pool, error)
	newMigrator  func(cfg *config.Config, lgr zerolog.Logger) (migrator, error)
	readPassword func(fd int) ([]byte, error)
}

func newAdmin(out io.Writer) *admin {
	return &admin{
		out: out,
		loadConfig: func() (*config.Config, zerolog.Logger, error) {
			cfg, lgr, _, err := bootstrap.LoadConfigAndSetupLogger()
			return cfg, lgr, err
		},
		openDB: func(cfg *config.Config) (*pgxpool.Pool, error) {
			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return nil, err
			}
			return database.Pool, nil
		},
		newMigrator: func(cfg *config.Config, lgr zerolog.Logger) (migrator, error) {
			return appMigrations.NewMigrator(cfg.GetMigrationURL(), lgr)
		},
		readPassword: term.ReadPassword,
	}
}

func newApp(a *admin) *cli.App {
	return &cli.App{
		Name:      "schooldesk-admin",
		Usage:     "maintenance commands for the SchoolDesk database",
		Writer:    a.out,
		ErrWriter: a.out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: a.migrateUp},
					{
						Name:   "down",
						Usage:  "roll back migrations",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"}},
						Action: a.migrateDown,
					},
					{Name: "version", Usage: "print the current schema version", Action: a.migrateVersion},
				},
			},
			{
				Name:  "create-admin",
				Usage: "create an administrator account; the password is prompted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "first-name", Value: "School"},
					&cli.StringFlag{Name: "last-name", Value: "Admin"},
				},
				Action: a.createAdmin,
			},
			{
				Name:   "purge-sessions",
				Usage:  "delete stale sessions and password reset tokens now",
				Action: a.purgeSessions,
			},
		},
	}
}

func (a *admin) withMigrator(fn func(m migrator) error) error {
	cfg, lgr, err := a.loadConfig()
	if err != nil {
		return err
	}
	m, err := a.newMigrator(cfg, lgr)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func (a *admin) migrateUp(_ *cli.Context) error {
	return a.withMigrator(func(m migrator) error { return m.Up() })
}

func (a *admin) migrateDown(c *cli.Context) error {
	return a.withMigrator(func(m migrator) error { return m.Down(c.Int("steps")) })
}

func (a *admin) migrateVersion(_ *cli.Context) error {
	return a.withMigrator(func(m migrator) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "version %d (dirty: %t)\n", version, dirty)
		return nil
	})
}

func (a *admin) withRepos(fn func(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error) error {
	cfg, lgr, err := a.loadConfig()
	if err != nil {
		return err
	}
	pool, err := a.openDB(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return fn(ctx, appRepos.NewRepositories(pool), lgr)
}

// promptPassword asks for the password twice without echoing it
func (a *admin) promptPassword() (string, error) {
	fmt.Fprint(a.out, "Enter password: ")
	first, err := a.readPassword(int(syscall.Stdin))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(a.out, "Repeat password: ")
	second, err := a.readPassword(int(syscall.Stdin))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(first, second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}

func (a *admin) createAdmin(c *cli.Context) error {
	password, err := a.promptPassword()
	if err != nil {
		return err
	}
	account := seed.AdminAccount{
		Email:     c.String("email"),
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
		Password:  password,
	}

	return a.withRepos(func(ctx context.Context, repos *appRepos.Repositories, _ zerolog.Logger) error {
		user, err := seed.CreateAdmin(ctx, repos.UserRepository, account)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created admin %s (id %d)\n", user.Email, user.ID)
		return nil
	})
}

func (a *admin) purgeSessions(_ *cli.Context) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	return a.withRepos(func(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
		sched := jobs.NewScheduler(lgr)
		return errors.Join(
			sched.RunNow(jobs.JobPurgeSessions, jobs.PurgeSessions(repos.SessionRepository, cfg.Jobs.SessionRetention, lgr)),
			sched.RunNow(jobs.JobPurgeResetTokens, jobs.PurgeResetTokens(repos.PasswordResetRepository, lgr)),
		)
	})
}
