// Package main is the entry point for the build-docs CLI application.
// build-docs works out the build directory and the make command (optionally
// wrapped in a docker run) for sphinx-based documentation, echoes it and runs it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/term"

	"github.com/MyCarrier-DevOps/build-docs/cmd"
	"github.com/MyCarrier-DevOps/build-docs/internal/adapters/container"
	"github.com/MyCarrier-DevOps/build-docs/internal/adapters/exec"
	"github.com/MyCarrier-DevOps/build-docs/internal/adapters/fs"
	"github.com/MyCarrier-DevOps/build-docs/internal/adapters/git"
	logadapter "github.com/MyCarrier-DevOps/build-docs/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/build-docs/internal/adapters/output"
	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
	"github.com/MyCarrier-DevOps/build-docs/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/build-docs/internal/usecases"
)

func main() {
	// Wire up production dependencies
	deps := &cmd.Dependencies{
		// The logger is built after ConfigLoader has exported LOG_LEVEL.
		LoggerFactory: func() cmd.Logger {
			return logadapter.NewZapAdapter(logger.NewZapLoggerFromConfig()).WithComponent("build")
		},

		ConfigLoader: func(verbose bool) (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			if err := cfg.ApplyLogEnv(verbose); err != nil {
				return nil, err
			}
			return toAppConfig(cfg, stdoutIsTerminal), nil
		},

		BranchLookupFactory: func(path string, log cmd.Logger) domain.BranchLookup {
			return git.NewBranchLookup(path, withComponent(log, "git"))
		},

		DirCheckerFactory: func() domain.DirectoryChecker {
			return fs.NewDirChecker()
		},

		RunnerFactory: func(log cmd.Logger) domain.CommandRunner {
			return exec.NewRunner(withComponent(log, "exec"))
		},

		SessionsFactory: func(runner domain.CommandRunner, log cmd.Logger) domain.IsolationSessions {
			return container.NewSessions(runner, usecases.DockerProgram, withComponent(log, "container"))
		},

		WriterFactory: func() domain.CommandWriter {
			return output.NewWriter()
		},

		Getwd:   os.Getwd,
		HomeDir: homedir.Dir,
		Stderr:  os.Stderr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd.SetDefaultDependencies(deps)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// toAppConfig converts loaded configuration into the form the command consumes.
func toAppConfig(cfg *config.Config, isTerminal func() bool) *cmd.AppConfig {
	return &cmd.AppConfig{
		Container:  cfg.ContainerSettings(isTerminal),
		LogLevel:   cfg.Log.Level,
		LogAppName: cfg.Log.AppName,
	}
}

// withComponent tags log with component when it supports it.
func withComponent(log cmd.Logger, component string) cmd.Logger {
	if zap, ok := log.(*logadapter.ZapAdapter); ok {
		return zap.WithComponent(component)
	}
	return log
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
