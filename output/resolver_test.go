package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_DerivesFromBuildRoot(t *testing.T) {
	tests := []struct {
		name      string
		buildRoot string
		want      string
	}{
		{"maven layout", "/proj/target", "/proj/target/generated-sources/jabsc"},
		{"root", "/", "/generated-sources/jabsc"},
		{"trailing slash", "/work/build/", "/work/build/generated-sources/jabsc"},
	}

	r := &Resolver{WorkDir: "/elsewhere"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), r.Resolve("", filepath.FromSlash(tt.buildRoot)))
		})
	}
}

func TestResolve_ConfiguredIgnoresBuildRoot(t *testing.T) {
	r := &Resolver{WorkDir: "/proj"}

	assert.Equal(t, "/custom/out", r.Resolve("/custom/out", "/proj/target"))
	assert.Equal(t, "/custom/out", r.Resolve("/custom/out", "/other/target"))
	assert.Equal(t, "/custom/out", r.Resolve("/custom/./out/", "/proj/target"))
}

func TestResolve_RelativeConfiguredUsesWorkDir(t *testing.T) {
	r := &Resolver{WorkDir: "/proj"}

	assert.Equal(t, "/proj/gen/java", r.Resolve("gen/java", "/proj/target"))
	assert.Equal(t, "/gen", r.Resolve("../gen", "/proj/target"))
}

func TestResolve_Deterministic(t *testing.T) {
	r := &Resolver{WorkDir: "/proj"}

	for _, configured := range []string{"", "out", "/abs/out"} {
		first := r.Resolve(configured, "/proj/target")
		second := r.Resolve(configured, "/proj/target")
		assert.Equal(t, first, second)
		assert.True(t, filepath.IsAbs(first))
	}
}

func TestResolve_DoesNotTouchFileSystem(t *testing.T) {
	root := t.TempDir()
	got := Resolve("", root)

	assert.Equal(t, filepath.Join(root, "generated-sources", "jabsc"), got)
	assert.NoDirExists(t, got)
}

func TestResolve_PackageLevelUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)

	got := Resolve("out", "/ignored")
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "out", filepath.Base(got))
}

func TestDefaultDirectories(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("/proj/src/main/abs"), DefaultSourceDirectory("/proj"))
	assert.Equal(t, filepath.FromSlash("/proj/target"), DefaultBuildDirectory("/proj"))
}
