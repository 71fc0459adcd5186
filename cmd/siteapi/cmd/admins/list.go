package admins

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List console users with their administrator roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openStore(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		users, err := s.users.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		profiles, err := s.profiles.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		roles := make(map[string]string, len(profiles))
		names := make(map[string]string, len(profiles))
		for _, p := range profiles {
			roles[p.ID] = p.Role
			names[p.ID] = p.FullName
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tLAST_LOGIN\tDISABLED")
		for _, u := range users {
			role := roles[u.ID]
			if role == "" {
				role = "-"
			}
			lastLogin := "never"
			if u.LastLoginAt != nil {
				lastLogin = u.LastLoginAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.Email, names[u.ID], role, lastLogin, u.DisabledAt != nil)
		}
		return w.Flush()
	},
}
