package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/env"
)

// loadConfig resolves the effective entrypoint configuration for a command.
// When the config path was never set explicitly and the default file does not
// exist, the built-in defaults apply; that keeps the binary usable in images
// that ship no entrypoint.yaml at all.
func loadConfig(cmd *cobra.Command, opts *Options) (*config.Config, config.Context, error) {
	inlineVars, err := env.ParseInlineVars(cmd.Flag("vars").Value.String())
	if err != nil {
		return nil, config.Context{}, err
	}

	var varFiles []string
	if vf := cmd.Flag("var-file").Value.String(); vf != "" {
		varFiles = append(varFiles, vf)
	}

	path := opts.ConfigPath
	if !cmd.Flags().Changed("config") && path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}

	return config.Load(path, config.LoadOptions{
		UserVars: inlineVars,
		VarFiles: varFiles,
	})
}
