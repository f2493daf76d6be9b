package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/Strob0t/lightlogger/internal/adapter/postgres"
	"github.com/Strob0t/lightlogger/internal/config"
	"github.com/Strob0t/lightlogger/internal/domain/project"
	"github.com/Strob0t/lightlogger/internal/domain/user"
	"github.com/Strob0t/lightlogger/internal/service"
)

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	case "reset-password":
		return runAdminResetPassword(args[1:])
	case "create-project":
		return runAdminCreateProject(args[1:])
	case "purge-sessions":
		return runAdminPurgeSessions(args[1:])
	case "migrate-version":
		return runAdminMigrateVersion(args[1:])
	case "migrate-down":
		return runAdminMigrateDown(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: lightlogger admin <command> [options]

Commands:
  create-user      Create a control-plane user
  list-users       List all users
  reset-password   Reset a user's password and revoke their sessions
  create-project   Create a project and print its ingestion token
  purge-sessions   Delete expired sessions
  migrate-version  Print the current schema migration version
  migrate-down     Roll back schema migrations
  help             Show this help message

Examples:
  lightlogger admin create-user --username admin --email admin@localhost
  lightlogger admin reset-password --username admin
  lightlogger admin create-project --name checkout
  lightlogger admin migrate-down --steps 1
`)
}

type adminDeps struct {
	auth     *service.AuthService
	projects *service.ProjectService
	sessions *service.SessionService
	close    func()
}

func loadAdminDeps() (*adminDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := postgres.NewPool(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	sessions := service.NewSessionService(store, cfg.Auth.SessionLifetime)
	return &adminDeps{
		auth:     service.NewAuthService(store, sessions, &cfg.Auth),
		projects: service.NewProjectService(store, nil, 0),
		sessions: sessions,
		close:    pool.Close,
	}, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("username", "", "username (required)")
	email := fs.String("email", "", "email address (required)")
	password := fs.String("password", "", "password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("--username is required")
	}
	if *email == "" {
		return errors.New("--email is required")
	}

	pass := *password
	if pass == "" {
		var err error
		if pass, err = promptNewPassword(); err != nil {
			return err
		}
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	u, err := deps.auth.Register(context.Background(), &user.CreateRequest{
		Username: *username,
		Email:    *email,
		Password: pass,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s)\n", u.Username, u.ID)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	users, err := deps.auth.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED\tLAST_LOGIN")
	for i := range users {
		lastLogin := "-"
		if users[i].LastLoginAt != nil {
			lastLogin = users[i].LastLoginAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			users[i].ID, users[i].Username, users[i].Email,
			users[i].CreatedAt.Format("2006-01-02 15:04"), lastLogin)
	}
	return w.Flush()
}

func runAdminResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	username := fs.String("username", "", "username (required)")
	password := fs.String("password", "", "new password (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("--username is required")
	}

	pass := *password
	if pass == "" {
		var err error
		if pass, err = promptNewPassword(); err != nil {
			return err
		}
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	if err := deps.auth.ResetPassword(context.Background(), *username, pass); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Password reset successfully for %s\n", *username)
	return nil
}

func runAdminCreateProject(args []string) error {
	fs := flag.NewFlagSet("create-project", flag.ContinueOnError)
	name := fs.String("name", "", "project name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	p, err := deps.projects.Create(context.Background(), &project.CreateRequest{Name: name})
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Project created: %s (id=%s)\n", p.Name, p.ID)
	fmt.Println(p.Token)
	return nil
}

func runAdminPurgeSessions(args []string) error {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	n, err := deps.sessions.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Purged %d expired sessions\n", n)
	return nil
}

func runAdminMigrateVersion(args []string) error {
	fs := flag.NewFlagSet("migrate-version", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	v, err := postgres.MigrationVersion(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

func runAdminMigrateDown(args []string) error {
	fs := flag.NewFlagSet("migrate-down", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to roll back")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := postgres.RollbackMigrations(context.Background(), cfg.Postgres.DSN, *steps); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Rolled back %d migration(s)\n", *steps)
	return nil
}

func promptNewPassword() (string, error) {
	pass, err := promptPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if pass != confirm {
		return "", errors.New("passwords do not match")
	}
	return pass, nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
