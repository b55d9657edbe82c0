// Package git provides adapters for interacting with local Git repositories.
package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a minimal logger for testing that doesn't output anything.
type testLogger struct{}

func (l *testLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (l *testLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

// initRepo creates an empty repository in dir whose initial branch is main.
func initRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("main"),
		},
	})
	require.NoError(t, err)
	return repo
}

// addCommit appends to README and commits it, returning the new commit hash.
func addCommit(t *testing.T, repo *git.Repository, dir string) plumbing.Hash {
	t.Helper()

	readme := filepath.Join(dir, "README")
	f, err := os.OpenFile(readme, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("more info\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README")
	require.NoError(t, err)

	hash, err := wt.Commit("my commit message", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash
}

// checkoutBranch creates and checks out a new branch.
func checkoutBranch(t *testing.T, repo *git.Repository, name string) {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}

func TestBranchLookup_NotARepository(t *testing.T) {
	lookup := NewBranchLookup(t.TempDir(), &testLogger{})

	result := lookup.CurrentBranch(context.Background())

	assert.False(t, result.Found)
	assert.Equal(t, "", result.Name)
}

func TestBranchLookup_OnBranch(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	addCommit(t, repo, dir)
	checkoutBranch(t, repo, "foo")

	result := NewBranchLookup(dir, &testLogger{}).CurrentBranch(context.Background())

	assert.True(t, result.Found)
	assert.Equal(t, "foo", result.Name)
}

func TestBranchLookup_BranchWithSlash(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	addCommit(t, repo, dir)
	checkoutBranch(t, repo, "release/v2.0")

	result := NewBranchLookup(dir, &testLogger{}).CurrentBranch(context.Background())

	assert.True(t, result.Found)
	assert.Equal(t, "release/v2.0", result.Name)
}

func TestBranchLookup_DetachedHead(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	hash := addCommit(t, repo, dir)
	_, err := repo.CreateTag("mytag", hash, nil)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: hash}))

	result := NewBranchLookup(dir, &testLogger{}).CurrentBranch(context.Background())

	assert.False(t, result.Found)
	assert.Equal(t, "", result.Name)
}

func TestBranchLookup_UnbornBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	result := NewBranchLookup(dir, &testLogger{}).CurrentBranch(context.Background())

	assert.True(t, result.Found)
	assert.Equal(t, "main", result.Name)
}

func TestBranchLookup_FromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	addCommit(t, repo, dir)
	checkoutBranch(t, repo, "docs-update")

	subdir := filepath.Join(dir, "doc", "source")
	require.NoError(t, os.MkdirAll(subdir, 0o755))

	result := NewBranchLookup(subdir, &testLogger{}).CurrentBranch(context.Background())

	assert.True(t, result.Found)
	assert.Equal(t, "docs-update", result.Name)
}
