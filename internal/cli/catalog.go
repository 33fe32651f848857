package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookoutlet/internal/demo"
	"github.com/mrlokans/bookoutlet/internal/entrypoint"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *entrypoint.App) error {
				result, err := demo.Seed(app.Catalog)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Skipped {
					fmt.Fprintln(out, "Catalog is not empty, nothing seeded")
					return nil
				}
				fmt.Fprintf(out, "Seeded %d countries, %d addresses, %d authors, %d books\n",
					result.Countries, result.Addresses, result.Authors, result.Books)
				return nil
			})
		},
	}
}

func newRegenerateSlugsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate-slugs",
		Short: "Fill in missing book slugs from their titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *entrypoint.App) error {
				updated, err := app.Catalog.RegenerateMissingSlugs()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Regenerated %d slug(s)\n", updated)
				return nil
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write JSON and CSV snapshots of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *entrypoint.App) error {
				target := dir
				if target == "" {
					target = app.Config.Export.Dir
				}
				files, err := app.Exporter.ExportToDir(target)
				if err != nil {
					return err
				}
				for _, file := range files {
					fmt.Fprintln(cmd.OutOrStdout(), file)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (defaults to EXPORT_DIR)")
	return cmd
}
