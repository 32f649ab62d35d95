// Package main provides the foodtwin command line tool: CSV import, what-if
// simulations and graph queries against any configured store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"food-trade-twin/internal/config"
	"food-trade-twin/internal/stores"
)

var version = "0.1.0"

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "foodtwin",
		Short: "Food trade digital twin - import, query and simulate",
		Long: `foodtwin loads yearly food trade graphs into a store and runs
what-if production shocks against them.

A store is selected with --postgres-dsn, --sqlite-path or --use-memory.
--clickhouse-dsn adds the ClickHouse analytics mirror.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	rootCmd.PersistentFlags().String("sqlite-path", os.Getenv("SQLITE_PATH"), "SQLite database file")
	rootCmd.PersistentFlags().String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (analytics mirror)")
	rootCmd.PersistentFlags().Bool("use-memory", false, "Use an in-memory store (with --fixtures for demo data)")
	rootCmd.PersistentFlags().Bool("fixtures", false, "Seed the in-memory store with the synthetic fixture graph")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log progress to stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newImportCmd(),
		newSimulateCmd(),
		newCountriesCmd(),
		newHistoryCmd(),
		newPartnersCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "foodtwin version %s\n", version)
			return nil
		},
	}
}

// openStores opens the backends named by the persistent flags.
func openStores(ctx context.Context, cmd *cobra.Command) (*stores.Stores, error) {
	flags := cmd.Flags()
	postgresDSN, _ := flags.GetString("postgres-dsn")
	sqlitePath, _ := flags.GetString("sqlite-path")
	clickhouseDSN, _ := flags.GetString("clickhouse-dsn")
	useMemory, _ := flags.GetBool("use-memory")
	useFixtures, _ := flags.GetBool("fixtures")

	return stores.Open(ctx, stores.Config{
		UseMemory:     useMemory,
		Fixtures:      useFixtures,
		FixtureSeed:   42,
		PostgresDSN:   postgresDSN,
		SQLitePath:    sqlitePath,
		ClickhouseDSN: clickhouseDSN,
	}, newLogger(cmd, "[foodtwin] "))
}

// newLogger logs to stderr with --verbose and discards otherwise.
func newLogger(cmd *cobra.Command, prefix string) *log.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return log.New(cmd.ErrOrStderr(), prefix, log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
