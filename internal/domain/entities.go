// Package domain defines the core entities and interfaces for build-docs.
package domain

import "path/filepath"

// BuildDirInputs holds the raw, optional inputs that select a build directory.
// An empty string means the input was not supplied.
type BuildDirInputs struct {
	// BuildDir is an explicit build directory. Mutually exclusive with the other fields.
	BuildDir string

	// RepoRoot is the root of the repository holding documentation builds.
	RepoRoot string

	// Version names the build subdirectory. When empty it is derived from the
	// current git branch.
	Version string

	// IntermediatePath is inserted between RepoRoot and Version.
	IntermediatePath string
}

// BuildDirSpec is either an ExplicitDir or a DerivedDir.
type BuildDirSpec interface {
	isBuildDirSpec()
}

// ExplicitDir is a build directory given verbatim by the caller.
type ExplicitDir struct {
	Path string
}

// DerivedDir is a build directory composed from a repo root, an optional
// intermediate path and a version.
type DerivedDir struct {
	RepoRoot         string
	IntermediatePath string

	// Version is empty when it must come from branch lookup.
	Version string
}

func (ExplicitDir) isBuildDirSpec() {}
func (DerivedDir) isBuildDirSpec()  {}

// Spec validates the inputs and returns the matching BuildDirSpec.
func (in BuildDirInputs) Spec() (BuildDirSpec, error) {
	if in.BuildDir != "" {
		if in.RepoRoot != "" {
			return nil, ErrBuildDirWithRepoRoot
		}
		if in.Version != "" {
			return nil, ErrBuildDirWithVersion
		}
		if in.IntermediatePath != "" {
			return nil, ErrBuildDirWithIntermediatePath
		}
		return ExplicitDir{Path: in.BuildDir}, nil
	}

	if in.RepoRoot == "" {
		return nil, ErrNoBuildDirOrRepoRoot
	}

	return DerivedDir{
		RepoRoot:         in.RepoRoot,
		IntermediatePath: in.IntermediatePath,
		Version:          in.Version,
	}, nil
}

// Join composes repoRoot/intermediatePath/version for the given version.
// An empty intermediate path adds no segment.
func (d DerivedDir) Join(version string) string {
	return filepath.Join(d.RepoRoot, d.IntermediatePath, version)
}

// BranchLookupResult is the outcome of asking source control for the current branch.
// Name is meaningful only when Found is true.
type BranchLookupResult struct {
	Found bool
	Name  string
}

// BuildCommand is an ordered, directly executable command line.
type BuildCommand []string

// Program returns the executable name, or "" for an empty command.
func (c BuildCommand) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the program name.
func (c BuildCommand) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// MakeParams describes one build-tool invocation.
type MakeParams struct {
	// Target is the make target (e.g. "html", "clean"). Omitted when empty.
	Target string

	// Jobs is the parallel job count. The -j flag is omitted when Jobs <= 0.
	Jobs int

	// ExtraArgs is a free-form argument string, shell-tokenized and appended last.
	ExtraArgs string

	// WarningsAsErrors adds SPHINXOPTS=-W --keep-going.
	WarningsAsErrors bool
}

// CommandRequest is the input to command construction.
type CommandRequest struct {
	// BuildDir is the resolved build directory. A relative path is taken
	// relative to RunFromDir.
	BuildDir string

	// RunFromDir is the absolute directory the build is launched from.
	// Only consulted for isolated builds.
	RunFromDir string

	Make MakeParams

	// SessionName is the isolation session identifier. Empty means no container.
	SessionName string
}

// Isolated reports whether the request asks for a container build.
func (r CommandRequest) Isolated() bool {
	return r.SessionName != ""
}

// MountStrategy selects the host directory bound into the container.
type MountStrategy string

const (
	// MountCommonAncestor mounts the deepest directory containing both the
	// working directory and the build directory. The host build directory is
	// passed through unchanged and made reachable by the bridge symlink.
	//
	// Known limitation: the verbatim path is only right if it means the same
	// thing inside the container once the bridge link exists. Nothing checks
	// this; a host path reached through symlinks outside the mount point will
	// not resolve in the container.
	MountCommonAncestor MountStrategy = "common-ancestor"

	// MountHome mounts the user's home directory. The build directory is
	// remapped into the container namespace.
	MountHome MountStrategy = "home"
)

// TTYMode controls whether -t is passed to the container runtime.
type TTYMode string

const (
	TTYAuto   TTYMode = "auto"
	TTYAlways TTYMode = "always"
	TTYNever  TTYMode = "never"
)

// ContainerConfig holds the immutable settings for isolated builds.
type ContainerConfig struct {
	// Image is the container image identifier.
	Image string

	// Root is the path inside the container where the mount point is bound.
	Root string

	MountStrategy MountStrategy

	// TTY requests a pseudo-terminal (-t) for colorized output.
	TTY bool
}

// ContainerPlan is the path remapping computed for one isolated invocation.
type ContainerPlan struct {
	// MountPoint is the host directory bound to Root.
	MountPoint string

	// Root is the container-side path of MountPoint.
	Root string

	// Workdir is the container-side working directory.
	Workdir string

	// BuildDir is the build directory as written into the inner make command.
	BuildDir string

	// Bridge is the shell fragment that links MountPoint to Root inside the container.
	Bridge string
}

// BuildOptions configures a complete build-docs run.
type BuildOptions struct {
	BuildDir         string
	RepoRoot         string
	IntermediatePath string

	// Versions lists the versions to build. Empty means a single pass with the
	// version taken from the current branch (or none when BuildDir is set).
	Versions []string

	Target           string
	Jobs             int
	ExtraArgs        string
	WarningsAsErrors bool

	Clean      bool
	UseDocker  bool
	PullImage  bool
	DryRun     bool
	RunFromDir string
}

// Default values for build options.
const (
	DefaultTarget   = "html"
	DefaultMakeJobs = 4
)
