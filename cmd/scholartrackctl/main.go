// Command scholartrackctl runs maintenance tasks against the ScholarTrack database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := rootCmd(viper.New(), logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(v *viper.Viper, logger zerolog.Logger) *cobra.Command {
	v.SetEnvPrefix("SCHOLARTRACK")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "scholartrackctl",
		Short:         "Maintenance commands for the ScholarTrack API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("database-url", "", "PostgreSQL DSN (env SCHOLARTRACK_DATABASE_URL)")
	_ = v.BindPFlag("database_url", cmd.PersistentFlags().Lookup("database-url"))

	cmd.AddCommand(migrateCmd(v, logger), seedCmd(v, logger), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scholartrackctl %s\n", Version)
		},
	}
}
