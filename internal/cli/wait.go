package cli

import (
	"github.com/spf13/cobra"

	"github.com/quiz-k8s/entryctl/internal/waitfor"
)

// newWaitCommand creates the "wait" subcommand that runs only the dependency
// readiness probes. Useful as an init-container command.
func newWaitCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for declared dependencies to become ready",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if len(cfg.Wait.Targets) == 0 {
				logger.Info("no wait targets configured")
				return nil
			}

			return waitfor.WaitAll(cmd.Context(), logger, cfg.Wait.Targets)
		},
	}

	return cmd
}
