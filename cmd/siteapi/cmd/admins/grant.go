package admins

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
)

var grantCmd = &cobra.Command{
	Use:   "grant [email]",
	Short: "Grant or change a user's administrator profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateRole(roleFlag); err != nil {
			return err
		}

		ctx := context.Background()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		user, err := s.userByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		name := nameFlag
		if name == "" {
			name = user.Email
		}
		if err := s.profiles.Upsert(ctx, &models.AdministratorProfile{ID: user.ID, FullName: name, Role: roleFlag}); err != nil {
			return fmt.Errorf("failed to grant profile: %w", err)
		}

		fmt.Printf("✓ Granted role '%s' to %s\n", roleFlag, user.Email)
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke [email]",
	Short: "Remove a user's administrator profile",
	Long: `Removes the administrator profile. The user can still sign in but is sent
to the public home on their next console request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		user, err := s.userByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		if err := s.profiles.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to revoke profile: %w", err)
		}

		fmt.Printf("✓ Revoked administrator profile of %s\n", user.Email)
		return nil
	},
}
