// Package stacktrace trims goroutine dumps to the frames that belong to this module.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of a
// debug.Stack() dump that points into an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		_, rel, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rel, ".go:") {
			continue
		}

		// frame lines look like "/abs/path/file.go:42 +0x1d"
		rel, _, _ = strings.Cut(rel, " ")
		paths = append(paths, "internal/"+rel)
	}

	return paths
}
