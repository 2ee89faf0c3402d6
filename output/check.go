package output

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/jabsc/errors"
)

// DefaultMetadataPrefixes are header lines translators stamp on every run
var DefaultMetadataPrefixes = []string{
	"// Generated at:",
	"// Source last modified:",
}

// CheckResult holds the result of comparing a fresh translation with existing output
type CheckResult struct {
	UpToDate bool
	Changed  []string // present in both trees, content differs
	Missing  []string // produced by the fresh run, absent from the existing tree
	Stale    []string // present only in the existing tree
}

// CompareDirectories compares freshDir (a translation into a scratch directory)
// with existingDir. Paths in the result are relative to the directory roots.
// Lines starting with one of ignorePrefixes are dropped before comparing.
// A missing existingDir makes every fresh file Missing.
func CompareDirectories(freshDir, existingDir string, ignorePrefixes []string) (*CheckResult, error) {
	fresh, err := listFiles(freshDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", freshDir)
	}
	existing, err := listFiles(existingDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", existingDir)
	}

	result := &CheckResult{}
	for rel := range fresh {
		if !existing[rel] {
			result.Missing = append(result.Missing, rel)
			continue
		}
		different, err := filesAreDifferent(
			filepath.Join(freshDir, rel),
			filepath.Join(existingDir, rel),
			ignorePrefixes,
		)
		if err != nil {
			return nil, err
		}
		if different {
			result.Changed = append(result.Changed, rel)
		}
	}
	for rel := range existing {
		if !fresh[rel] {
			result.Stale = append(result.Stale, rel)
		}
	}

	sort.Strings(result.Changed)
	sort.Strings(result.Missing)
	sort.Strings(result.Stale)
	result.UpToDate = len(result.Changed) == 0 && len(result.Missing) == 0 && len(result.Stale) == 0
	return result, nil
}

// listFiles returns the relative paths of all regular files under root.
// A missing root is an empty tree.
func listFiles(root string) (map[string]bool, error) {
	files := make(map[string]bool)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return files, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = true
		return nil
	})
	return files, err
}

// filesAreDifferent compares two files, skipping metadata lines
func filesAreDifferent(file1, file2 string, ignorePrefixes []string) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file1)
	}
	content2, err := os.ReadFile(file2)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file2)
	}

	if len(ignorePrefixes) == 0 {
		return !bytes.Equal(content1, content2), nil
	}

	lines1, err := filterMetadataLines(content1, ignorePrefixes)
	if err != nil {
		return false, errors.Wrapf(err, "failed to scan %s", file1)
	}
	lines2, err := filterMetadataLines(content2, ignorePrefixes)
	if err != nil {
		return false, errors.Wrapf(err, "failed to scan %s", file2)
	}
	return lines1 != lines2, nil
}

func filterMetadataLines(content []byte, ignorePrefixes []string) (string, error) {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if hasAnyPrefix(strings.TrimSpace(line), ignorePrefixes) {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	return result.String(), scanner.Err()
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
