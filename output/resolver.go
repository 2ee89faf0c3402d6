// Package output resolves where generated sources are written.
//
// Resolution is lexical: it never reads or creates directories and cannot
// fail. The translator owns creation of the output directory.
package output

import (
	"os"
	"path/filepath"
)

const (
	// GeneratedSourcesDir is the conventional build-directory segment for generated code
	GeneratedSourcesDir = "generated-sources"

	// ToolDir keeps this tool's output apart from other generators under the same build root
	ToolDir = "jabsc"
)

// Resolver turns a configured or derived output location into an absolute path.
// WorkDir is the base for relative configured paths.
type Resolver struct {
	WorkDir string
}

// NewResolver returns a resolver anchored at the process working directory.
// If the working directory is unavailable, relative paths resolve against "/".
func NewResolver() *Resolver {
	wd, err := os.Getwd()
	if err != nil {
		wd = string(filepath.Separator)
	}
	return &Resolver{WorkDir: wd}
}

// Resolve returns the output directory for one invocation.
//
// A non-empty configured path wins and is made absolute; buildRoot is then
// ignored. An empty configured path derives buildRoot/generated-sources/jabsc.
// buildRoot is trusted to be absolute already.
func (r *Resolver) Resolve(configured, buildRoot string) string {
	if configured != "" {
		return r.Abs(configured)
	}
	return filepath.Join(buildRoot, GeneratedSourcesDir, ToolDir)
}

// Abs makes p absolute against WorkDir without touching the file system
func (r *Resolver) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.WorkDir, p)
}

// Resolve resolves against the process working directory
func Resolve(configured, buildRoot string) string {
	return NewResolver().Resolve(configured, buildRoot)
}

// DefaultSourceDirectory returns baseDir/src/main/abs
func DefaultSourceDirectory(baseDir string) string {
	return filepath.Join(baseDir, "src", "main", "abs")
}

// DefaultBuildDirectory returns baseDir/target
func DefaultBuildDirectory(baseDir string) string {
	return filepath.Join(baseDir, "target")
}
