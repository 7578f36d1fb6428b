package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/logging"
)

// flagEnv maps persistent flags onto the environment variables the config
// loader reads, so flags and env share one validation path.
var flagEnv = []struct{ flag, env string }{
	{"driver", "DB_DRIVER"},
	{"db-path", "SQLITE_PATH"},
	{"database-url", "DATABASE_URL"},
	{"log-level", "LOG_LEVEL"},
}

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "crmport",
		Short: "Import and export CRM data as CSV or ZIP files",
		Long: `crmport moves CRM data (accounts, contacts, communications and
opportunities) in and out of the store as CSV files or ZIP bundles of them.

Examples:
  crmport sample --out template.zip     # Write the import template
  crmport validate data.zip             # Check a file without importing
  crmport import data.zip               # Import into the configured store
  crmport export --out backup.zip       # Dump every entity`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal; real env vars take precedence.
			_ = godotenv.Load()

			for _, fe := range flagEnv {
				f := cmd.Flags().Lookup(fe.flag)
				if f == nil {
					continue
				}
				if f.Changed || os.Getenv(fe.env) == "" {
					if f.Value.String() == "" {
						continue
					}
					if err := os.Setenv(fe.env, f.Value.String()); err != nil {
						return errors.Wrapf(err, "set %s", fe.env)
					}
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String("driver", "", "Store driver: memory, sqlite or postgres (env DB_DRIVER)")
	pf.String("db-path", "", "SQLite database file (env SQLITE_PATH)")
	pf.String("database-url", "", "PostgreSQL connection string (env DATABASE_URL)")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error (env LOG_LEVEL)")

	root.AddCommand(
		a.importCmd(),
		a.validateCmd(),
		a.exportCmd(),
		a.sampleCmd(),
	)
	return root
}
