package integration

import (
	"fmt"

	"github.com/teranos/jabsc/errors"
)

// Stage names the step of an invocation that failed
type Stage string

const (
	StageCollect   Stage = "collect"
	StageTranslate Stage = "translate"
)

// ErrIntegration matches every *IntegrationFailure via errors.Is
var ErrIntegration = errors.New("jabsc integration failed")

// IntegrationFailure is the single failure kind surfaced to the host build.
// It wraps a source.CollectionFailure or a translate.TranslationFailure.
type IntegrationFailure struct {
	Stage     Stage
	SourceDir string
	OutputDir string
	Collected int
	Err       error
}

func (f *IntegrationFailure) Error() string {
	return fmt.Sprintf("jabsc %s failed (source %s, output %s, %d sources collected): %v",
		f.Stage, f.SourceDir, f.OutputDir, f.Collected, f.Err)
}

func (f *IntegrationFailure) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrIntegration) hold for any integration failure
func (f *IntegrationFailure) Is(target error) bool { return target == ErrIntegration }
