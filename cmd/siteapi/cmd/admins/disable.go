package admins

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable [email]",
	Short: "Disable a user and revoke their sessions",
	Args:  cobra.ExactArgs(1),
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

		if enableFlag {
			if err := s.users.SetDisabled(ctx, user.ID, nil); err != nil {
				return fmt.Errorf("failed to enable user: %w", err)
			}
			fmt.Printf("✓ Enabled %s\n", user.Email)
			return nil
		}

		now := time.Now()
		if err := s.users.SetDisabled(ctx, user.ID, &now); err != nil {
			return fmt.Errorf("failed to disable user: %w", err)
		}
		if err := s.sessions.RevokeByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("user disabled but revoking sessions failed: %w", err)
		}
		fmt.Printf("✓ Disabled %s and revoked their sessions\n", user.Email)
		return nil
	},
}
