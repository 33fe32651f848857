package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/entrypoint"
)

func newCreateAdminCommand() *cobra.Command {
	var username, email, password, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin interface account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userRole, err := auth.ParseRole(role)
			if err != nil {
				return fmt.Errorf("%w: %q (use admin or viewer)", err, role)
			}

			return withApp(cmd, func(app *entrypoint.App) error {
				user, err := app.Auth.CreateUser(username, email, password, userRole)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&username, "username", "", "Login name (required)")
	flags.StringVar(&email, "email", "", "Email address (required)")
	flags.StringVar(&password, "password", "", "Password (required)")
	flags.StringVar(&role, "role", "admin", "Role: admin or viewer")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
