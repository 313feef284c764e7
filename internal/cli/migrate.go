package cli

import (
	"github.com/spf13/cobra"
)

// newMigrateCommand creates the "migrate" subcommand that runs only the schema
// migration step. A missing migration config exits zero, matching the
// skip-not-error behavior of the full run.
func newMigrateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the schema migration step without launching the application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			return runMigrationStep(cmd.Context(), logger, cfg, false)
		},
	}

	return cmd
}
