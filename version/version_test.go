package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_Semver(t *testing.T) {
	tests := []struct {
		version string
		want    string // empty = nil
		release bool
	}{
		{"dev", "", false},
		{"", "", false},
		{"not-a-version", "", false},
		{"v0.3.1", "0.3.1", true},
		{"1.2.0-rc.1", "1.2.0-rc.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			info := Info{Version: tt.version}
			got := info.Semver()
			if tt.want == "" {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, tt.want, got.String())
			}
			assert.Equal(t, tt.release, info.IsRelease())
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "v0.3.1", CommitHash: "0123456789abcdef", BuildTime: "2026-01-02"}
	assert.Equal(t, "jabsc v0.3.1 (commit 0123456, built 2026-01-02)", info.String())

	dev := Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"}
	assert.Equal(t, "jabsc dev (commit dev, built unknown)", dev.String())
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
	assert.Contains(t, info.Platform, "/")
}
