package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
)

// NewBootstrapAdminCmd creates the bootstrap-admin command. It makes sure an
// active admin profile exists for the given uid, creating it when absent and
// promoting it otherwise.
func NewBootstrapAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap-admin <uid> <email>",
		Short: "Create or promote an active admin profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, email := args[0], args[1]

			ctx := context.Background()
			st, err := connectStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st)

			repo := store.NewProfileRepository(st, nil)

			stored, created, err := repo.CreateIfAbsent(ctx, &models.UserProfile{
				UID:    uid,
				Email:  email,
				Role:   models.RoleAdmin,
				Status: models.StatusActive,
			})
			if err != nil {
				return fmt.Errorf("failed to ensure profile: %w", err)
			}

			if created {
				fmt.Printf("Created admin profile %s (%s)\n", stored.UID, stored.Email)
				return nil
			}

			// Existing profile, promote in place
			role := models.RoleAdmin
			status := models.StatusActive
			if err := repo.UpdateRoleStatus(ctx, uid, &role, &status); err != nil {
				return fmt.Errorf("failed to promote profile: %w", err)
			}

			fmt.Printf("Promoted profile %s to active admin\n", uid)
			return nil
		},
	}
}
