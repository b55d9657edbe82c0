package usecases

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockBranchLookup implements domain.BranchLookup for testing.
type mockBranchLookup struct {
	result domain.BranchLookupResult
	calls  int
}

func (m *mockBranchLookup) CurrentBranch(_ context.Context) domain.BranchLookupResult {
	m.calls++
	return m.result
}

// fakeDirs implements domain.DirectoryChecker over a fixed set of directories.
type fakeDirs struct {
	existing map[string]bool
	checked  []string
}

func newFakeDirs(dirs ...string) *fakeDirs {
	f := &fakeDirs{existing: make(map[string]bool)}
	for _, d := range dirs {
		f.existing[strings.TrimRight(d, "/")] = true
	}
	return f
}

func (f *fakeDirs) IsDir(path string) bool {
	f.checked = append(f.checked, path)
	return f.existing[strings.TrimRight(path, "/")]
}

func TestPathResolver_ExplicitBuildDir(t *testing.T) {
	branches := &mockBranchLookup{}
	dirs := newFakeDirs()
	resolver := NewPathResolver(branches, dirs, &mockLogger{})

	for _, dir := range []string{"/path/to/foo", "relative/dir", "/does/not/exist"} {
		got, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{BuildDir: dir})

		require.NoError(t, err)
		assert.Equal(t, dir, got)
	}

	assert.Zero(t, branches.calls)
	assert.Empty(t, dirs.checked, "explicit build dir must not touch the filesystem")
}

func TestPathResolver_ConflictingInputs(t *testing.T) {
	tests := []struct {
		name    string
		inputs  domain.BuildDirInputs
		wantErr error
	}{
		{
			name:    "build dir and repo root",
			inputs:  domain.BuildDirInputs{BuildDir: "/path/to/foo", RepoRoot: "/path/to/repo"},
			wantErr: domain.ErrBuildDirWithRepoRoot,
		},
		{
			name:    "build dir and version",
			inputs:  domain.BuildDirInputs{BuildDir: "/path/to/foo", Version: "v1.0"},
			wantErr: domain.ErrBuildDirWithVersion,
		},
		{
			name:    "build dir and intermediate path",
			inputs:  domain.BuildDirInputs{BuildDir: "/path/to/foo", IntermediatePath: "versions"},
			wantErr: domain.ErrBuildDirWithIntermediatePath,
		},
		{
			name:    "neither build dir nor repo root",
			inputs:  domain.BuildDirInputs{},
			wantErr: domain.ErrNoBuildDirOrRepoRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches := &mockBranchLookup{result: domain.BranchLookupResult{Found: true, Name: "main"}}
			resolver := NewPathResolver(branches, newFakeDirs(), &mockLogger{})

			_, err := resolver.Resolve(context.Background(), tt.inputs)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, branches.calls)
		})
	}
}

func TestPathResolver_ExplicitVersion(t *testing.T) {
	tests := []struct {
		name   string
		inputs domain.BuildDirInputs
		want   string
	}{
		{
			name:   "repo root and version",
			inputs: domain.BuildDirInputs{RepoRoot: filepath.Join("path", "to", "repo"), Version: "v1.0"},
			want:   filepath.Join("path", "to", "repo", "v1.0"),
		},
		{
			name: "repo root, intermediate path and version",
			inputs: domain.BuildDirInputs{
				RepoRoot:         "/path/to/repo",
				IntermediatePath: filepath.Join("intermediate1", "intermediate2"),
				Version:          "v1.0",
			},
			want: filepath.Join("/path/to/repo", "intermediate1", "intermediate2", "v1.0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches := &mockBranchLookup{}
			// Nothing exists: an explicit version does not require the directory.
			dirs := newFakeDirs()
			resolver := NewPathResolver(branches, dirs, &mockLogger{})

			got, err := resolver.Resolve(context.Background(), tt.inputs)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, branches.calls)
			assert.Empty(t, dirs.checked)
		})
	}
}

func TestPathResolver_VersionFromBranch(t *testing.T) {
	pathToRepo := filepath.Join("path", "to", "repo")
	expected := filepath.Join(pathToRepo, "release-v2.0")

	branches := &mockBranchLookup{result: domain.BranchLookupResult{Found: true, Name: "release-v2.0"}}
	resolver := NewPathResolver(branches, newFakeDirs(pathToRepo, expected), &mockLogger{})

	got, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{RepoRoot: pathToRepo})

	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.Equal(t, 1, branches.calls)
}

func TestPathResolver_VersionFromBranch_WithIntermediatePath(t *testing.T) {
	intermediate := filepath.Join("intermediate1", "intermediate2")
	expected := filepath.Join("/repo", intermediate, "foo_branch")

	branches := &mockBranchLookup{result: domain.BranchLookupResult{Found: true, Name: "foo_branch"}}
	resolver := NewPathResolver(branches, newFakeDirs(expected), &mockLogger{})

	got, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{
		RepoRoot:         "/repo",
		IntermediatePath: intermediate,
	})

	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestPathResolver_EmptyIntermediatePathAddsNoSegment(t *testing.T) {
	resolver := NewPathResolver(&mockBranchLookup{}, newFakeDirs(), &mockLogger{})

	withEmpty, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{
		RepoRoot:         "/repo",
		Version:          "main",
		IntermediatePath: "",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/repo", "main"), withEmpty)
}

func TestPathResolver_BranchNotFound(t *testing.T) {
	branches := &mockBranchLookup{result: domain.BranchLookupResult{Found: false}}
	resolver := NewPathResolver(branches, newFakeDirs("/path/to/repo"), &mockLogger{})

	_, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{RepoRoot: "/path/to/repo"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVersionUndetermined)
	assert.Contains(t, err.Error(), "--doc-version")
}

func TestPathResolver_VersionFromBranch_DirMissing(t *testing.T) {
	pathToRepo := filepath.Join("path", "to", "repo")
	branches := &mockBranchLookup{result: domain.BranchLookupResult{Found: true, Name: "release-v2.0"}}
	// The repo root exists but the version directory does not.
	resolver := NewPathResolver(branches, newFakeDirs(pathToRepo), &mockLogger{})

	_, err := resolver.Resolve(context.Background(), domain.BuildDirInputs{RepoRoot: pathToRepo})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildDirMissing)
	assert.Contains(t, err.Error(), "--doc-version release-v2.0")
	assert.Contains(t, err.Error(), filepath.Join(pathToRepo, "release-v2.0"))
}
