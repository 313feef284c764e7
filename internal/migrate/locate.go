// Package migrate runs the schema migration step of the container entrypoint.
//
// The migration tool itself (alembic by default) is external: this package
// only decides whether it should run, where to run it from, and surfaces its
// exit status.
package migrate

import (
	"os"
	"path/filepath"
)

// Locate returns the first existing candidate config file. Relative
// candidates resolve against workdir when it is set. The boolean reports
// whether any candidate exists; a miss is the caller's cue to skip the
// migration step, not an error.
func Locate(workdir string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		path := candidate
		if !filepath.IsAbs(path) && workdir != "" {
			path = filepath.Join(workdir, path)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, true
	}
	return "", false
}
