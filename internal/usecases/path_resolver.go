package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// PathResolver resolves the documentation build directory.
type PathResolver struct {
	branches domain.BranchLookup
	dirs     domain.DirectoryChecker
	logger   Logger
}

// NewPathResolver creates a PathResolver with the given collaborators.
func NewPathResolver(branches domain.BranchLookup, dirs domain.DirectoryChecker, log Logger) *PathResolver {
	return &PathResolver{
		branches: branches,
		dirs:     dirs,
		logger:   log,
	}
}

// Resolve returns the build directory selected by inputs.
//
// An explicit build directory is returned unchanged without touching the
// filesystem. Otherwise the directory is repoRoot/intermediatePath/version. When
// the version is not supplied it is taken from the current git branch, and the
// composed directory must then already exist.
func (r *PathResolver) Resolve(ctx context.Context, inputs domain.BuildDirInputs) (string, error) {
	spec, err := inputs.Spec()
	if err != nil {
		return "", err
	}

	switch s := spec.(type) {
	case domain.ExplicitDir:
		r.logger.Debug(ctx, "using explicit build directory", map[string]interface{}{
			"build_dir": s.Path,
		})
		return s.Path, nil
	case domain.DerivedDir:
		return r.resolveDerived(ctx, s)
	default:
		return "", fmt.Errorf("unsupported build directory spec %T", spec)
	}
}

func (r *PathResolver) resolveDerived(ctx context.Context, spec domain.DerivedDir) (string, error) {
	if spec.Version != "" {
		buildDir := spec.Join(spec.Version)
		r.logger.Debug(ctx, "using explicit version", map[string]interface{}{
			"version":   spec.Version,
			"build_dir": buildDir,
		})
		return buildDir, nil
	}

	branch := r.branches.CurrentBranch(ctx)
	if !branch.Found {
		return "", domain.ErrVersionUndetermined
	}

	buildDir := spec.Join(branch.Name)
	r.logger.Info(ctx, "derived version from git branch", map[string]interface{}{
		"version":   branch.Name,
		"build_dir": buildDir,
	})

	if !r.dirs.IsDir(buildDir) {
		return "", fmt.Errorf(
			"%w: %s\nIf this is where you really want to build the documentation, "+
				"rerun adding the command-line argument '--doc-version %s'",
			domain.ErrBuildDirMissing, buildDir, branch.Name,
		)
	}

	return buildDir, nil
}
