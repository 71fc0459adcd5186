package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/cmd/admins"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteapi",
	Short: "Site API server for the marketing site and its admin console",
	Long: `Site API serves the public content API for the marketing site and the
guarded admin console used to edit it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return applyFlagOverrides(cmd, cfg)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	// Add subcommands
	rootCmd.AddCommand(admins.AdminsCmd)
}

// applyFlagOverrides lets explicitly set flags win over the environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("db-url") {
		v, err := flags.GetString("db-url")
		if err != nil {
			return err
		}
		cfg.DatabaseURL = v
	}
	if flags.Changed("server-addr") {
		v, err := flags.GetString("server-addr")
		if err != nil {
			return err
		}
		cfg.ServerAddr = v
	}
	if flags.Changed("debug") {
		v, err := flags.GetBool("debug")
		if err != nil {
			return err
		}
		cfg.Debug = v
	}
	return cfg.Validate()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
