package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
	enableFlag   bool
)

// AdminsCmd is the parent command for console account provisioning.
// Administrator profiles are only ever written from here.
var AdminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage console users and administrator profiles",
	Long:  `Commands for provisioning console users and granting or revoking administrator profiles directly from the server.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Full name shown in the console")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "", "Administrator role to grant (admin, editor or viewer); omit to create a user without a profile")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	grantCmd.Flags().StringVar(&nameFlag, "name", "", "Full name shown in the console (defaults to the email)")
	grantCmd.Flags().StringVar(&roleFlag, "role", models.RoleEditor, "Administrator role (admin, editor or viewer)")

	disableCmd.Flags().BoolVar(&enableFlag, "enable", false, "Re-enable a disabled user instead")

	AdminsCmd.AddCommand(createCmd)
	AdminsCmd.AddCommand(grantCmd)
	AdminsCmd.AddCommand(revokeCmd)
	AdminsCmd.AddCommand(disableCmd)
	AdminsCmd.AddCommand(listCmd)
}

// store bundles the repositories the admins commands need.
type store struct {
	db       *bun.DB
	users    repository.UserRepository
	profiles repository.AdministratorRepository
	sessions repository.SessionRepository
}

func (s *store) Close() {
	_ = bunx.Close(s.db)
}

// openStore loads configuration, honouring an explicit --db-url, and connects.
func openStore(ctx context.Context, cmd *cobra.Command) (*store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	dsn := cfg.DatabaseURL
	if f := cmd.Flags().Lookup("db-url"); f != nil && f.Changed {
		dsn = f.Value.String()
	}

	db, err := bunx.NewDB(ctx, dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &store{
		db:       db,
		users:    repository.NewBunUserRepository(db),
		profiles: repository.NewBunAdministratorRepository(db),
		sessions: repository.NewBunSessionRepository(db),
	}, nil
}

// userByEmail resolves a user, turning a miss into a readable error.
func (s *store) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no user with email %q", email)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func validateRole(role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q\nValid roles are: %s", role,
			strings.Join([]string{models.RoleAdmin, models.RoleEditor, models.RoleViewer}, ", "))
	}
	return nil
}
