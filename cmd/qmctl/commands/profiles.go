package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/holthoefer/qmflow/internal/config"
	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
	"github.com/holthoefer/qmflow/internal/validation"
)

// connectStore opens the document store from the ambient configuration
func connectStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
	}
}

// NewProfilesCmd creates the profiles command group
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage user profiles",
		Long:  "List profiles and set their role or status directly against the store",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesSetCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, err := connectStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st)

			profiles, err := store.NewProfileRepository(st, nil).List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}

			if len(profiles) == 0 {
				fmt.Println("No profiles found")
				return nil
			}

			for _, p := range profiles {
				fmt.Printf("  - UID: %s\n", p.UID)
				fmt.Printf("    Email: %s\n", p.Email)
				fmt.Printf("    Role: %s\n", p.Role)
				fmt.Printf("    Status: %s\n", p.Status)
				fmt.Printf("    Created: %s\n", p.CreatedAt.UTC().Format(time.RFC3339))
				fmt.Println()
			}

			return nil
		},
	}
}

func newProfilesSetCmd() *cobra.Command {
	var roleFlag string
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "set <uid>",
		Short: "Set a profile's role and/or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := args[0]

			if roleFlag == "" && statusFlag == "" {
				return fmt.Errorf("at least one of --role or --status is required")
			}

			var role *models.Role
			if roleFlag != "" {
				if err := validation.ValidateRole(roleFlag); err != nil {
					return err
				}
				r := models.Role(roleFlag)
				role = &r
			}
			var status *models.Status
			if statusFlag != "" {
				if err := validation.ValidateStatus(statusFlag); err != nil {
					return err
				}
				s := models.Status(statusFlag)
				status = &s
			}

			ctx := context.Background()
			st, err := connectStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st)

			repo := store.NewProfileRepository(st, nil)
			if err := repo.UpdateRoleStatus(ctx, uid, role, status); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			updated, err := repo.Get(ctx, uid)
			if err != nil {
				return fmt.Errorf("failed to read back profile: %w", err)
			}

			fmt.Printf("Profile %s updated: role=%s status=%s\n", updated.UID, updated.Role, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&roleFlag, "role", "", "New role (user or admin)")
	cmd.Flags().StringVar(&statusFlag, "status", "", "New status (active, pending_approval or suspended)")

	return cmd
}
