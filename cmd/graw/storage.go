package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw/internal/config"
	"github.com/jamesprial/graw/pkg/storage"
	"github.com/jamesprial/graw/pkg/storage/sqlite"
)

var purgeOlderThan = storage.DefaultPurgeAge

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the token database schema",
}

var schemaUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Apply pending migrations to the SQLite token database",
	Args:  cobra.NoArgs,
	RunE:  runSchemaUpgrade,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored tokens that expired long ago",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", storage.DefaultPurgeAge, "delete tokens that expired at least this long ago")

	schemaCmd.AddCommand(schemaUpgradeCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(purgeCmd)
}

func runSchemaUpgrade(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverSQLite {
		return errors.New("schema upgrade requires the sqlite storage driver")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	version, dirty, err := store.(*sqlite.Store).Version()
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d", version)
	if dirty {
		cmd.Print(" (dirty)")
	}
	cmd.Println()
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no token store configured")
	}
	defer store.Close()

	if err := store.PurgeOlderThan(cmd.Context(), purgeOlderThan); err != nil {
		return err
	}
	cmd.Printf("purged tokens that expired more than %s ago\n", purgeOlderThan)
	return nil
}
