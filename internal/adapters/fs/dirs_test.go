package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirChecker_IsDir(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/path/to/repo/release-v2.0", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/path/to/repo/README", []byte("docs"), 0o644))

	checker := NewDirCheckerWithFs(mem)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing directory", path: "/path/to/repo/release-v2.0", want: true},
		{name: "trailing slash", path: "/path/to/repo/release-v2.0/", want: true},
		{name: "parent directory", path: "/path/to/repo", want: true},
		{name: "regular file", path: "/path/to/repo/README", want: false},
		{name: "missing path", path: "/path/to/repo/main", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsDir(tt.path))
		})
	}
}

func TestDirChecker_OsFs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	checker := NewDirChecker()

	assert.True(t, checker.IsDir(dir))
	assert.False(t, checker.IsDir(file))
	assert.False(t, checker.IsDir(filepath.Join(dir, "missing")))
}
