package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flags.
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "graw",
	Short: "Command line client for the Reddit API",
	Long: `graw talks to the Reddit API as a single account using a "script"
application's credentials.

Settings are read from the file given by --config (TOML), then from a .env
file in the working directory, then from GRAW_* environment variables:

  [auth]
  client_id     = "..."   # GRAW_AUTH_CLIENT_ID
  client_secret = "..."   # GRAW_AUTH_CLIENT_SECRET
  username      = "..."   # GRAW_AUTH_USERNAME
  password      = "..."   # GRAW_AUTH_PASSWORD
  user_agent    = "..."   # GRAW_AUTH_USER_AGENT

  [storage]
  driver = "sqlite"       # sqlite, bolt or none
  path   = "~/.graw/tokens.db"`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("graw version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")

	rootCmd.AddCommand(versionCmd)
}
