package main

import (
	"os"

	"github.com/quiz-k8s/entryctl/internal/cli"
	"github.com/quiz-k8s/entryctl/internal/logging"
	"github.com/quiz-k8s/entryctl/internal/migrate"
)

// main is the entry point for the entryctl binary. A failed migration step
// terminates the container with the migration tool's own exit code; all other
// startup failures exit with code 1.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("startup failed", "error", err)
		if code, ok := migrate.ExitCode(err); ok && code > 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
