// Package translate is the boundary to the ABS-to-Java translation engine.
//
// The engine itself is external: jabsc only hands it the collected source
// paths and one output directory, and receives back the paths it wrote.
package translate

import (
	"context"
	"strconv"

	"github.com/teranos/jabsc/errors"
)

// Compiler translates sources into outputDir and returns the absolute paths
// of the files it produced. Implementations create outputDir if needed.
type Compiler interface {
	Compile(ctx context.Context, sources []string, outputDir string) ([]string, error)
}

// CompilerFunc adapts a function to the Compiler interface
type CompilerFunc func(ctx context.Context, sources []string, outputDir string) ([]string, error)

// Compile calls f
func (f CompilerFunc) Compile(ctx context.Context, sources []string, outputDir string) ([]string, error) {
	return f(ctx, sources, outputDir)
}

// ErrTranslation matches every *TranslationFailure via errors.Is
var ErrTranslation = errors.New("translation failed")

// TranslationFailure wraps whatever error the translator signalled.
// The cause is opaque to jabsc.
type TranslationFailure struct {
	OutputDir string
	Sources   int
	Err       error
}

func (f *TranslationFailure) Error() string {
	return "translation of " + strconv.Itoa(f.Sources) + " sources into " + f.OutputDir + " failed: " + f.Err.Error()
}

func (f *TranslationFailure) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrTranslation) hold for any translation failure
func (f *TranslationFailure) Is(target error) bool { return target == ErrTranslation }

// AsFailure returns err as a *TranslationFailure, wrapping it if needed
func AsFailure(err error, sources []string, outputDir string) *TranslationFailure {
	var existing *TranslationFailure
	if errors.As(err, &existing) {
		return existing
	}
	return &TranslationFailure{OutputDir: outputDir, Sources: len(sources), Err: err}
}
