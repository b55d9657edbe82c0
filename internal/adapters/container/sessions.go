// Package container manages container isolation sessions for build-docs.
package container

import (
	"context"

	"github.com/docker/docker/pkg/namesgenerator"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// SessionPrefix starts every isolation session name.
const SessionPrefix = "build_docs_"

// Logger defines the logging interface for the container adapter.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
}

// Sessions implements domain.IsolationSessions on top of the docker CLI.
type Sessions struct {
	runner  domain.CommandRunner
	program string
	newName func() string
	logger  Logger
}

// NewSessions creates Sessions that run the container runtime through runner.
func NewSessions(runner domain.CommandRunner, program string, log Logger) *Sessions {
	return &Sessions{
		runner:  runner,
		program: program,
		newName: func() string { return namesgenerator.GetRandomName(0) },
		logger:  log,
	}
}

// NewName returns a session name such as "build_docs_focused_turing".
func (s *Sessions) NewName() string {
	return SessionPrefix + s.newName()
}

// Pull fetches image ahead of the first build.
func (s *Sessions) Pull(ctx context.Context, image string) error {
	return s.runner.Run(ctx, domain.BuildCommand{s.program, "pull", image})
}

// Terminate kills the container named after the session.
func (s *Sessions) Terminate(ctx context.Context, name string) error {
	s.logger.Info(ctx, "killing container", map[string]interface{}{"session": name})
	return s.runner.Run(ctx, domain.BuildCommand{s.program, "kill", name})
}
