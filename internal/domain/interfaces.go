// Package domain defines the core entities and interfaces for build-docs.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
)

// Domain errors for build directory resolution.
var (
	// ErrBuildDirWithRepoRoot indicates both an explicit build dir and a repo root were given.
	ErrBuildDirWithRepoRoot = errors.New("cannot specify both build-dir and repo-root")

	// ErrBuildDirWithVersion indicates both an explicit build dir and a version were given.
	ErrBuildDirWithVersion = errors.New("cannot specify both build-dir and version")

	// ErrBuildDirWithIntermediatePath indicates both an explicit build dir and an intermediate path were given.
	ErrBuildDirWithIntermediatePath = errors.New("cannot specify both build-dir and intermediate-path")

	// ErrNoBuildDirOrRepoRoot indicates neither an explicit build dir nor a repo root was given.
	ErrNoBuildDirOrRepoRoot = errors.New("must specify either build-dir or repo-root")

	// ErrVersionUndetermined indicates the branch lookup found no branch.
	ErrVersionUndetermined = errors.New(
		"problem determining version based on git branch; set --doc-version on the command line",
	)

	// ErrBuildDirMissing indicates the branch-derived build directory does not exist.
	ErrBuildDirMissing = errors.New("build directory doesn't exist yet")
)

// Domain errors for command construction and execution.
var (
	// ErrRelativePath indicates a path that must be absolute was relative.
	ErrRelativePath = errors.New("expect absolute path")

	// ErrWorkdirOutsideMount indicates the working directory is not under the mount point.
	ErrWorkdirOutsideMount = errors.New("working directory must reside under your home directory")

	// ErrBuildDirOutsideMount indicates the build directory is not under the mount point.
	ErrBuildDirOutsideMount = errors.New("build directory must reside under your home directory")

	// ErrMountPointIsRoot indicates the only common ancestor is the filesystem root.
	ErrMountPointIsRoot = errors.New("working directory and build directory share no ancestor below the filesystem root")

	// ErrCommandFailed indicates an executed command exited with a non-zero status.
	ErrCommandFailed = errors.New("command failed")

	// ErrEmptyCommand indicates an attempt to execute an empty command.
	ErrEmptyCommand = errors.New("empty command")
)

// BranchLookup reports the current source-control branch.
// A missing branch (detached HEAD, not a repository) is reported as Found=false,
// never as an error.
type BranchLookup interface {
	CurrentBranch(ctx context.Context) BranchLookupResult
}

// DirectoryChecker reports whether a path is an existing directory.
// It returns false for paths that do not exist.
type DirectoryChecker interface {
	IsDir(path string) bool
}

// BuildDirResolver turns build directory inputs into a single path.
type BuildDirResolver interface {
	Resolve(ctx context.Context, inputs BuildDirInputs) (string, error)
}

// CommandFactory builds the command line for one build-tool invocation.
type CommandFactory interface {
	Build(ctx context.Context, req CommandRequest) (BuildCommand, error)
}

// CommandRunner executes a command, inheriting the caller's standard streams.
// It returns an error wrapping ErrCommandFailed on a non-zero exit.
type CommandRunner interface {
	Run(ctx context.Context, cmd BuildCommand) error
}

// IsolationSessions names and terminates container isolation sessions.
type IsolationSessions interface {
	// NewName returns a fresh, unique session name.
	NewName() string

	// Pull prefetches the container image.
	Pull(ctx context.Context, image string) error

	// Terminate stops the container running under the given session name.
	Terminate(ctx context.Context, name string) error
}

// CommandWriter echoes a command before it is executed.
type CommandWriter interface {
	WriteCommand(cmd BuildCommand) error
}

// DocBuilder runs a complete documentation build.
type DocBuilder interface {
	Build(ctx context.Context, opts BuildOptions) error
}
