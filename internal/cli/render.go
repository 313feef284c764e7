package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newRenderCommand creates the "render" subcommand that prints the resolved
// effective configuration after templating, env files and defaults.
func newRenderCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the resolved entrypoint configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode effective config: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	return cmd
}
