// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements identityctl, the operator command line for the
identity store.

Commands run directly against the configured store; no API server is
needed. Configuration comes from the same environment variables as the
server, with flags overriding the store selection.
*/
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ultimatemercer/identity/internal/app"
	"github.com/ultimatemercer/identity/internal/platform/apperr"
	"github.com/ultimatemercer/identity/internal/platform/config"
	"github.com/ultimatemercer/identity/internal/platform/constants"
	"github.com/ultimatemercer/identity/internal/platform/migration"
	"github.com/ultimatemercer/identity/internal/platform/validate"
	"github.com/ultimatemercer/identity/internal/users/auth"
)

// runtime holds persistent flags and lazily opened resources.
type runtime struct {
	driver      string
	databaseURL string
	sqlitePath  string
	verbose     bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the identityctl command tree.
func NewRootCommand() *cobra.Command {
	state := &runtime{}

	root := &cobra.Command{
		Use:   "identityctl",
		Short: "Operate the identity credential store",
		Long: `identityctl manages the identity store without going through the API.

It reads the same environment as the server (STORE_DRIVER, DATABASE_URL,
SQLITE_PATH, PASSWORD_HASH_ITERATIONS, ...). Flags override the store
selection:

  identityctl --driver sqlite --sqlite-path ./data/identity.db migrate up
  identityctl register --email a@x.com --username alice01 --password Abcdef12`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&state.driver, "driver", "", "Store driver: postgres or sqlite (default from STORE_DRIVER)")
	root.PersistentFlags().StringVar(&state.databaseURL, "database-url", "", "PostgreSQL URL (default from DATABASE_URL)")
	root.PersistentFlags().StringVar(&state.sqlitePath, "sqlite-path", "", "SQLite file (default from SQLITE_PATH)")
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "Log at debug level to stderr")

	root.AddCommand(
		newMigrateCommand(state),
		newRegisterCommand(state),
		newRegisterOAuthCommand(state),
		newLookupCommand(state),
		newVersionCommand(),
	)

	return root
}

func (state *runtime) load(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if state.verbose {
		level = slog.LevelDebug
	}
	state.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With(slog.String("app", "identityctl"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if state.driver != "" {
		cfg.StoreDriver = state.driver
	}
	if state.databaseURL != "" {
		cfg.DatabaseURL = state.databaseURL
	}
	if state.sqlitePath != "" {
		cfg.SQLitePath = state.sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	state.cfg = cfg
	return nil
}

// withService opens the store, runs fn with a credential service and
// closes the store again. Verification tokens are not issued offline.
func (state *runtime) withService(ctx context.Context, fn func(*auth.Service) error) error {
	stores, err := app.OpenStores(ctx, state.cfg, state.logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	return fn(app.NewAuthService(state.cfg, stores, nil, nil, nil, state.logger))
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// # migrate

func newMigrateCommand(state *runtime) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ensureSQLiteDirectory(state.cfg); err != nil {
				return err
			}
			if err := migration.RunUp(app.MigrationTarget(state.cfg), state.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, dirty, err := migration.Version(app.MigrationTarget(state.cfg), state.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})

	return migrate
}

func ensureSQLiteDirectory(cfg *config.Config) error {
	if cfg.StoreDriver != config.DriverSQLite {
		return nil
	}
	directory := filepath.Dir(cfg.SQLitePath)
	if directory == "." {
		return nil
	}
	return os.MkdirAll(directory, 0o750)
}

// # register

func newRegisterCommand(state *runtime) *cobra.Command {
	var input auth.RegisterInput

	command := &cobra.Command{
		Use:   "register",
		Short: "Create a password identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Email = strings.TrimSpace(input.Email)
			input.Username = strings.TrimSpace(input.Username)

			validator := &validate.Validator{}
			validator.Required(auth.FieldEmail, input.Email).
				Email(auth.FieldEmail, input.Email).
				Username(auth.FieldUsername, input.Username).
				Password(auth.FieldPassword, input.Password)
			if err := validator.Err(); err != nil {
				return describe(err)
			}

			return state.withService(cmd.Context(), func(service *auth.Service) error {
				view, err := service.Register(cmd.Context(), input)
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}

	command.Flags().StringVar(&input.Email, "email", "", "Email address")
	command.Flags().StringVar(&input.Username, "username", "", "Username")
	command.Flags().StringVar(&input.Password, "password", "", "Password")
	for _, name := range []string{"email", "username", "password"} {
		_ = command.MarkFlagRequired(name)
	}

	return command
}

// # register-oauth

func newRegisterOAuthCommand(state *runtime) *cobra.Command {
	var (
		input    auth.OAuthInput
		provider string
	)

	command := &cobra.Command{
		Use:   "register-oauth",
		Short: "Link or create an identity for an OAuth provider account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Provider = auth.Provider(strings.ToLower(provider))

			validator := &validate.Validator{}
			validator.Required(auth.FieldEmail, input.Email).
				Email(auth.FieldEmail, input.Email).
				Username(auth.FieldUsername, input.Username)
			if err := validator.Err(); err != nil {
				return describe(err)
			}

			return state.withService(cmd.Context(), func(service *auth.Service) error {
				view, created, err := service.RegisterOAuth(cmd.Context(), input)
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"created": created, "identity": view})
			})
		},
	}

	command.Flags().StringVar(&provider, "provider", "", "github, google or discord")
	command.Flags().StringVar(&input.ProviderID, "provider-id", "", "Account ID at the provider")
	command.Flags().StringVar(&input.Email, "email", "", "Email address")
	command.Flags().StringVar(&input.Username, "username", "", "Username")
	for _, name := range []string{"provider", "provider-id", "email", "username"} {
		_ = command.MarkFlagRequired(name)
	}

	return command
}

// # lookup

func newLookupCommand(state *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <email|username>",
		Short: "Print the identity matching an email or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := app.OpenStores(cmd.Context(), state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer stores.Close()

			identity, err := stores.Credentials.FindIdentity(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			if identity == nil {
				return fmt.Errorf("no identity matches %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), identity.View())
		},
	}
}

// # version

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, constants.AppVersion)
		},
	}
}

// describe renders domain and validation errors as one readable line.
func describe(err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		appError := authErr.AppError()
		return fmt.Errorf("%s: %s", appError.Code, appError.Message)
	}

	if appError := apperr.As(err); appError != nil {
		details := make([]string, 0, len(appError.Details))
		for _, detail := range appError.Details {
			details = append(details, detail.Field+": "+detail.Message)
		}
		if len(details) == 0 {
			return fmt.Errorf("%s: %s", appError.Code, appError.Message)
		}
		return fmt.Errorf("%s: %s", appError.Code, strings.Join(details, "; "))
	}

	return err
}
