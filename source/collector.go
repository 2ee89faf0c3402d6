// Package source discovers ABS input files in a project directory.
//
// Discovery is non-recursive: only entries directly inside the source
// directory whose name matches "*.<ext>" are returned. A missing directory
// is a valid project layout and yields zero sources; an existing directory
// that cannot be enumerated yields a *CollectionFailure.
package source

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/jabsc/errors"
)

// DefaultExtension is the file extension of ABS sources
const DefaultExtension = "abs"

// ErrCollection matches every *CollectionFailure via errors.Is
var ErrCollection = errors.New("source collection failed")

// CollectionFailure reports a source directory that exists but cannot be read
type CollectionFailure struct {
	Dir     string
	Pattern string
	Err     error
}

func (f *CollectionFailure) Error() string {
	return "cannot read " + f.Pattern + " sources from " + f.Dir + ": " + f.Err.Error()
}

func (f *CollectionFailure) Unwrap() error { return f.Err }

// Is makes errors.Is(err, ErrCollection) hold for any collection failure
func (f *CollectionFailure) Is(target error) bool { return target == ErrCollection }

// Collector lists input files with one extension
type Collector struct {
	extension string
}

// NewCollector creates a collector for files named "*.<extension>".
// An empty extension falls back to DefaultExtension.
func NewCollector(extension string) *Collector {
	if extension == "" {
		extension = DefaultExtension
	}
	return &Collector{extension: extension}
}

// Pattern returns the glob entry names are matched against
func (c *Collector) Pattern() string {
	return "*." + c.extension
}

// Collect returns the absolute paths of the matching entries directly inside dir,
// sorted lexically.
func (c *Collector) Collect(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, c.failure(dir, errors.Wrap(err, "failed to resolve directory"))
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, c.failure(abs, err)
	}

	names, err := readNames(abs)
	if err != nil {
		return nil, c.failure(abs, err)
	}

	pattern := c.Pattern()
	sources := make([]string, 0, len(names))
	for _, name := range names {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, c.failure(abs, errors.Wrapf(err, "invalid pattern %q", pattern))
		}
		if matched {
			sources = append(sources, filepath.Join(abs, name))
		}
	}

	sort.Strings(sources)
	return sources, nil
}

// readNames lists the entry names of dir. The handle is released on every path.
func readNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.Readdirnames(-1)
}

func (c *Collector) failure(dir string, cause error) *CollectionFailure {
	return &CollectionFailure{
		Dir:     dir,
		Pattern: c.Pattern(),
		Err:     errors.WithHint(cause, "check that the source directory is a readable directory"),
	}
}

// Collect lists "*.abs" files directly inside dir
func Collect(dir string) ([]string, error) {
	return NewCollector(DefaultExtension).Collect(dir)
}
