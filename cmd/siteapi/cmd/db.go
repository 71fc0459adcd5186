package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/migrations"
)

var rollbackConfirmFlag bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the site schema",
	Long: `Commands for creating and upgrading the site schema: administrator accounts
and sessions, content sections, the record tables (testimonials, videos,
process steps, services, projects) and the render cache.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the migration bookkeeping tables",
	Long:  `Creates the tables that track applied schema versions. Run once per database before "db migrate".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, false, func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Init(ctx); err != nil {
				return fmt.Errorf("init schema bookkeeping: %w", err)
			}
			log.Printf("Schema bookkeeping ready")
			return nil
		})
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the site schema up to date",
	Long: `Applies every pending schema version in one group. Concurrent runs (for
example two deploys starting together) serialise on the migration lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, true, func(ctx context.Context, m *migrate.Migrator) error {
			group, err := m.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("upgrade site schema: %w", err)
			}
			if group.IsZero() {
				log.Printf("Site schema already up to date")
				return nil
			}
			for _, mig := range group.Migrations {
				log.Printf("  applied %s", mig.Name)
			}
			log.Printf("Site schema upgraded (group %d)", group.ID)
			return nil
		})
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List applied and pending schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, false, func(ctx context.Context, m *migrate.Migrator) error {
			ms, err := m.MigrationsWithStatus(ctx)
			if err != nil {
				return fmt.Errorf("read schema status: %w", err)
			}

			for _, mig := range ms {
				state := "pending"
				if mig.GroupID > 0 {
					state = fmt.Sprintf("applied in group %d at %s", mig.GroupID, mig.MigratedAt.Format("2006-01-02 15:04"))
				}
				log.Printf("  %s: %s", mig.Name, state)
			}
			pending := ms.Unapplied()
			if len(pending) > 0 {
				log.Printf("%d of %d versions pending; run \"db migrate\" before serving", len(pending), len(ms))
			} else {
				log.Printf("All %d versions applied", len(ms))
			}
			return nil
		})
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Undo the last schema group",
	Long: `Rolls back the most recently applied group. Rolling back the initial group
drops every site table, including all content and administrator accounts, so
--yes is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rollbackConfirmFlag {
			return errors.New("rollback can drop site content; rerun with --yes to confirm")
		}
		return withMigrator(cmd, true, func(ctx context.Context, m *migrate.Migrator) error {
			group, err := m.Rollback(ctx)
			if err != nil {
				return fmt.Errorf("roll back site schema: %w", err)
			}
			if group.IsZero() {
				log.Printf("Nothing to roll back")
				return nil
			}
			for _, mig := range group.Migrations {
				log.Printf("  rolled back %s", mig.Name)
			}
			log.Printf("Rolled back group %d", group.ID)
			return nil
		})
	},
}

var dbLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Hold the migration lock",
	Long:  `Takes the migration lock so no deploy can change the schema, for example during a manual restore. Release it with "db unlock".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, false, func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Lock(ctx); err != nil {
				return fmt.Errorf("take migration lock: %w", err)
			}
			log.Printf("Migration lock held; schema changes are blocked until \"db unlock\"")
			return nil
		})
	},
}

var dbUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Release the migration lock",
	Long:  `Releases the migration lock, including one left behind by a deploy that crashed mid-upgrade.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, false, func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Unlock(ctx); err != nil {
				return fmt.Errorf("release migration lock: %w", err)
			}
			log.Printf("Migration lock released")
			return nil
		})
	},
}

// withMigrator opens the configured database and runs fn against the site
// migrations. With locked set, fn runs while holding the migration lock.
func withMigrator(cmd *cobra.Command, locked bool, fn func(context.Context, *migrate.Migrator) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := bunx.NewDB(ctx, cfg.DatabaseURL, 1)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer bunx.Close(db)

	m := migrate.NewMigrator(db, migrations.Migrations)
	if !locked {
		return fn(ctx, m)
	}

	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("take migration lock (another deploy may be migrating; see \"db unlock\"): %w", err)
	}
	defer func() {
		if err := m.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Printf("WARNING: migration lock not released: %v", err)
		}
	}()
	return fn(ctx, m)
}

func init() {
	dbRollbackCmd.Flags().BoolVar(&rollbackConfirmFlag, "yes", false, "Confirm a rollback that may drop site tables")

	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd, dbMigrateCmd, dbStatusCmd, dbRollbackCmd, dbLockCmd, dbUnlockCmd)
}
