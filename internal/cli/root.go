// Package cli implements the bookoutlet command line.
//
// Running the binary without a subcommand starts the HTTP server. The other
// commands open the configured database, do one job and exit:
//
//	bookoutlet create-admin --username admin --email admin@example.com --password secret
//	bookoutlet seed
//	bookoutlet regenerate-slugs
//	bookoutlet export --dir ./exports
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/entrypoint"
)

const databaseFlag = "database"

// NewRootCommand builds the command tree. Configuration comes from the
// environment; --database overrides DATABASE_PATH.
func NewRootCommand(version, commit string) *cobra.Command {
	serve := newServeCommand(version)

	root := &cobra.Command{
		Use:           "bookoutlet",
		Short:         "Book catalog with an admin interface",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().String(databaseFlag, "", "SQLite database path (overrides DATABASE_PATH)")

	root.AddCommand(
		serve,
		newCreateAdminCommand(),
		newSeedCommand(),
		newRegenerateSlugsCommand(),
		newExportCommand(),
	)
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	path, err := cmd.Flags().GetString(databaseFlag)
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.Database.Type = config.DatabaseTypeSQLite
		cfg.Database.Path = path
	}
	return cfg, nil
}

// withApp runs fn against a freshly opened App and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(app *entrypoint.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(app)
}

func newServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return entrypoint.Run(cmd.Context(), cfg, version)
		},
	}
}
