// Package host models the enclosing build as far as jabsc needs it:
// a base directory, a build directory and a list of compile source roots.
package host

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Registrar receives generated source roots so the host build compiles them
type Registrar interface {
	AddCompileSourceRoot(path string)
}

// RegistrarFunc adapts a function to the Registrar interface
type RegistrarFunc func(path string)

// AddCompileSourceRoot calls f
func (f RegistrarFunc) AddCompileSourceRoot(path string) { f(path) }

// Project is an in-process host build. Roots are kept in registration order
// without duplicates.
type Project struct {
	BaseDir  string
	BuildDir string

	roots []string
}

// NewProject creates a project rooted at baseDir with its build output in buildDir
func NewProject(baseDir, buildDir string) *Project {
	return &Project{BaseDir: baseDir, BuildDir: buildDir}
}

// AddCompileSourceRoot records path once, exactly as given. An empty path is ignored.
func (p *Project) AddCompileSourceRoot(path string) {
	if path == "" {
		return
	}
	for _, existing := range p.roots {
		if existing == path {
			return
		}
	}
	p.roots = append(p.roots, path)
}

// CompileSourceRoots returns a copy of the registered roots
func (p *Project) CompileSourceRoots() []string {
	out := make([]string, len(p.roots))
	copy(out, p.roots)
	return out
}

// DetectBaseDir returns the root of the git worktree containing start, or
// start itself (made absolute) when it is not inside a repository.
func DetectBaseDir(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		abs = start
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return abs
	}
	wt, err := repo.Worktree()
	if err != nil {
		return abs
	}
	return wt.Filesystem.Root()
}

// WorkingBaseDir is DetectBaseDir anchored at the process working directory
func WorkingBaseDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return DetectBaseDir(wd)
}
