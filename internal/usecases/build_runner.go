package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// terminateTimeout bounds the docker kill issued after an interrupt.
const terminateTimeout = 30 * time.Second

// BuildRunner runs complete documentation builds: one pass per requested
// version, each with an optional clean step.
type BuildRunner struct {
	resolver domain.BuildDirResolver
	commands domain.CommandFactory
	runner   domain.CommandRunner
	sessions domain.IsolationSessions
	writer   domain.CommandWriter
	image    string
	logger   Logger
}

// NewBuildRunner creates a BuildRunner. image is the container image prefetched
// when BuildOptions.PullImage is set.
func NewBuildRunner(
	resolver domain.BuildDirResolver,
	commands domain.CommandFactory,
	runner domain.CommandRunner,
	sessions domain.IsolationSessions,
	writer domain.CommandWriter,
	image string,
	log Logger,
) *BuildRunner {
	return &BuildRunner{
		resolver: resolver,
		commands: commands,
		runner:   runner,
		sessions: sessions,
		writer:   writer,
		image:    image,
		logger:   log,
	}
}

// Build resolves the build directory for every version in opts and runs the
// build there. The first failure stops the run.
func (b *BuildRunner) Build(ctx context.Context, opts domain.BuildOptions) error {
	versions := opts.Versions
	if len(versions) == 0 {
		versions = []string{""}
	}

	// One session name serves every container of this run: each container is
	// started with --rm and exits before the next one starts.
	var session string
	if opts.UseDocker {
		session = b.sessions.NewName()
		defer func() {
			if ctx.Err() != nil {
				b.terminate(ctx, session)
			}
		}()

		if opts.PullImage && !opts.DryRun {
			b.logger.Info(ctx, "pulling container image", map[string]interface{}{"image": b.image})
			if err := b.sessions.Pull(ctx, b.image); err != nil {
				return fmt.Errorf("failed to pull image %s: %w", b.image, err)
			}
		}
	}

	for _, version := range versions {
		if err := b.buildVersion(ctx, opts, version, session); err != nil {
			return err
		}
	}

	return nil
}

func (b *BuildRunner) buildVersion(ctx context.Context, opts domain.BuildOptions, version, session string) error {
	buildDir, err := b.resolver.Resolve(ctx, domain.BuildDirInputs{
		BuildDir:         opts.BuildDir,
		RepoRoot:         opts.RepoRoot,
		Version:          version,
		IntermediatePath: opts.IntermediatePath,
	})
	if err != nil {
		return err
	}

	b.logger.Info(ctx, "resolved build directory", map[string]interface{}{
		"build_dir": buildDir,
		"version":   version,
		"docker":    opts.UseDocker,
	})

	if opts.Clean {
		clean := domain.MakeParams{Target: "clean", Jobs: opts.Jobs}
		if err := b.run(ctx, opts, buildDir, clean, session); err != nil {
			return err
		}
	}

	build := domain.MakeParams{
		Target:           opts.Target,
		Jobs:             opts.Jobs,
		ExtraArgs:        opts.ExtraArgs,
		WarningsAsErrors: opts.WarningsAsErrors,
	}
	return b.run(ctx, opts, buildDir, build, session)
}

func (b *BuildRunner) run(
	ctx context.Context,
	opts domain.BuildOptions,
	buildDir string,
	params domain.MakeParams,
	session string,
) error {
	cmd, err := b.commands.Build(ctx, domain.CommandRequest{
		BuildDir:    buildDir,
		RunFromDir:  opts.RunFromDir,
		Make:        params,
		SessionName: session,
	})
	if err != nil {
		return err
	}

	if err := b.writer.WriteCommand(cmd); err != nil {
		return fmt.Errorf("failed to echo command: %w", err)
	}

	if opts.DryRun {
		return nil
	}

	if err := b.runner.Run(ctx, cmd); err != nil {
		b.logger.Error(ctx, "build command failed", err, map[string]interface{}{
			"target":    params.Target,
			"build_dir": buildDir,
		})
		return err
	}

	return nil
}

// terminate kills the session's container after the run context was cancelled.
func (b *BuildRunner) terminate(ctx context.Context, session string) {
	killCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminateTimeout)
	defer cancel()

	b.logger.Warn(ctx, "interrupted; terminating container", map[string]interface{}{"session": session})
	if err := b.sessions.Terminate(killCtx, session); err != nil {
		b.logger.Warn(ctx, "failed to terminate container", map[string]interface{}{
			"session": session,
			"error":   err.Error(),
		})
	}
}
