// Package cmd provides the CLI commands for build-docs.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
	"github.com/MyCarrier-DevOps/build-docs/internal/usecases"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance. It is called after the
	// configuration has been loaded, so log settings are already in place.
	LoggerFactory func() Logger

	// ConfigLoader loads application configuration. verbose requests debug logging.
	ConfigLoader func(verbose bool) (*AppConfig, error)

	// BranchLookupFactory creates a BranchLookup for the repository containing path.
	BranchLookupFactory func(path string, log Logger) domain.BranchLookup

	// DirCheckerFactory creates a DirectoryChecker.
	DirCheckerFactory func() domain.DirectoryChecker

	// RunnerFactory creates the CommandRunner that executes build commands.
	RunnerFactory func(log Logger) domain.CommandRunner

	// SessionsFactory creates the container session manager.
	SessionsFactory func(runner domain.CommandRunner, log Logger) domain.IsolationSessions

	// WriterFactory creates the writer that echoes commands.
	WriterFactory func() domain.CommandWriter

	// Getwd returns the directory the build is run from.
	Getwd func() (string, error)

	// HomeDir returns the user's home directory (home mount strategy only).
	HomeDir usecases.HomeDirFunc

	// Stderr is the writer for standard error (for warnings/errors).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// Container holds the settings for isolated builds.
	Container domain.ContainerConfig

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// options holds the parsed command-line flags.
type options struct {
	buildDir         string
	repoRoot         string
	intermediatePath string
	versions         []string
	clean            bool
	docker           bool
	target           string
	jobs             int
	warningsAsErrors bool
	buildArgs        string
	dryRun           bool
	pull             bool
	verbose          bool
}

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for build-docs.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "build-docs",
		Short: "Build sphinx-based documentation with the right make command",
		Long: `build-docs wraps the make command that builds sphinx-based documentation.

It works out the build directory and the exact command line, including
when the build runs inside a Docker container or lands in a versioned
subdirectory named after the current git branch.

Run it from the directory that contains the documentation Makefile.

Examples:
  # Build into an explicit directory
  build-docs -b /path/to/doc/build/repo/some/subdirectory

  # Clean first, then build inside the documentation container
  build-docs -b /path/to/doc/build/repo/some/subdirectory -c -d

  # Build into REPO_ROOT/versions/<current branch>
  build-docs -r /path/to/doc/build/repo -i versions

  # Build several versions from the same source
  build-docs -r /path/to/doc/build/repo -i versions -v latest -v release-1.0

  # Show the commands without running them
  build-docs -b /tmp/docs --dry-run`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts, deps)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.buildDir, "build-dir", "b", "",
		"Full path to the directory in which the doc build should go")
	flags.StringVarP(&opts.repoRoot, "repo-root", "r", "",
		"Root directory of the repository holding documentation builds")
	flags.StringVarP(&opts.intermediatePath, "intermediate-path", "i", "",
		"Path between the repo root and the version directory (e.g. 'versions')")
	flags.StringSliceVarP(&opts.versions, "doc-version", "v", nil,
		"Version name to build, corresponding to a directory under the repo root;\n"+
			"defaults to the current git branch. Repeat to build several versions")
	flags.BoolVarP(&opts.clean, "clean", "c", false,
		"Before building, run 'make clean'")
	flags.BoolVarP(&opts.docker, "build-with-docker", "d", false,
		"Build inside the documentation Docker container rather than with a local Sphinx")
	flags.StringVarP(&opts.target, "build-target", "t", domain.DefaultTarget,
		"Target for the make command")
	flags.IntVarP(&opts.jobs, "num-make-jobs", "j", domain.DefaultMakeJobs,
		"Number of parallel jobs to use for the make process")
	flags.BoolVarP(&opts.warningsAsErrors, "warnings-as-errors", "W", false,
		"Treat sphinx warnings as errors")
	flags.StringVar(&opts.buildArgs, "build-args", "",
		"Extra arguments appended to the make command")
	flags.BoolVar(&opts.dryRun, "dry-run", false,
		"Print the commands without running them")
	flags.BoolVar(&opts.pull, "pull", false,
		"Pull the container image before building (with --build-with-docker)")
	flags.BoolVar(&opts.verbose, "verbose", false,
		"Enable verbose/debug logging")

	rootCmd.MarkFlagsMutuallyExclusive("build-dir", "repo-root")
	rootCmd.MarkFlagsOneRequired("build-dir", "repo-root")

	return rootCmd
}

// runBuild executes the documentation build with injected dependencies.
func runBuild(cmd *cobra.Command, opts *options, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg, err := deps.ConfigLoader(opts.verbose)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log := deps.LoggerFactory()

	runFromDir, err := deps.Getwd()
	if err != nil {
		log.Error(ctx, "failed to determine working directory", err, nil)
		return fmt.Errorf("cannot determine working directory: %w", err)
	}

	log.Info(ctx, "starting build-docs", map[string]interface{}{
		"build_dir":    opts.buildDir,
		"repo_root":    opts.repoRoot,
		"versions":     opts.versions,
		"target":       opts.target,
		"docker":       opts.docker,
		"run_from_dir": runFromDir,
	})

	if opts.pull && !opts.docker {
		writeWarningf(stderr, "warning: --pull has no effect without --build-with-docker\n")
	}

	runner := deps.RunnerFactory(log)
	var builder domain.DocBuilder = usecases.NewBuildRunner(
		usecases.NewPathResolver(deps.BranchLookupFactory(runFromDir, log), deps.DirCheckerFactory(), log),
		usecases.NewCommandBuilder(cfg.Container, deps.HomeDir, log),
		runner,
		deps.SessionsFactory(runner, log),
		deps.WriterFactory(),
		cfg.Container.Image,
		log,
	)

	err = builder.Build(ctx, domain.BuildOptions{
		BuildDir:         opts.buildDir,
		RepoRoot:         opts.repoRoot,
		IntermediatePath: opts.intermediatePath,
		Versions:         opts.versions,
		Target:           opts.target,
		Jobs:             opts.jobs,
		ExtraArgs:        opts.buildArgs,
		WarningsAsErrors: opts.warningsAsErrors,
		Clean:            opts.clean,
		UseDocker:        opts.docker,
		PullImage:        opts.pull,
		DryRun:           opts.dryRun,
		RunFromDir:       runFromDir,
	})
	if err != nil {
		log.Error(ctx, "documentation build failed", err, nil)
		return translateError(ctx, err)
	}

	log.Info(ctx, "documentation build complete", nil)
	return nil
}

// translateError turns a build failure into the message shown to the user.
func translateError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("build interrupted: %w", err)
	case errors.Is(err, domain.ErrCommandFailed):
		return fmt.Errorf("build command failed: %w", err)
	case errors.Is(err, domain.ErrWorkdirOutsideMount),
		errors.Is(err, domain.ErrBuildDirOutsideMount),
		errors.Is(err, domain.ErrMountPointIsRoot):
		return fmt.Errorf("cannot build with docker: %w", err)
	default:
		return err
	}
}

// Execute runs the root command with ctx and returns its error.
// The caller decides the exit status.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		// Intentionally ignored: no recovery action for failed stderr writes
		return
	}
}
