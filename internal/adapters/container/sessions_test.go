package container

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

type testLogger struct{}

func (l *testLogger) Info(_ context.Context, _ string, _ map[string]interface{}) {}

// recordingRunner implements domain.CommandRunner and records every command.
type recordingRunner struct {
	commands []domain.BuildCommand
	err      error
}

func (r *recordingRunner) Run(_ context.Context, cmd domain.BuildCommand) error {
	r.commands = append(r.commands, cmd)
	return r.err
}

// Docker only accepts names matching [a-zA-Z0-9][a-zA-Z0-9_.-]+.
var dockerName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]+$`)

func TestSessions_NewName(t *testing.T) {
	sessions := NewSessions(&recordingRunner{}, "docker", &testLogger{})

	for range 20 {
		name := sessions.NewName()
		assert.Regexp(t, dockerName, name)
		assert.True(t, len(name) > len(SessionPrefix))
		assert.Equal(t, SessionPrefix, name[:len(SessionPrefix)])
	}
}

func TestSessions_NewName_UsesGenerator(t *testing.T) {
	sessions := NewSessions(&recordingRunner{}, "docker", &testLogger{})
	sessions.newName = func() string { return "focused_turing" }

	assert.Equal(t, "build_docs_focused_turing", sessions.NewName())
}

func TestSessions_Pull(t *testing.T) {
	runner := &recordingRunner{}
	sessions := NewSessions(runner, "docker", &testLogger{})

	require.NoError(t, sessions.Pull(context.Background(), "escomp/base:latest"))

	assert.Equal(t, []domain.BuildCommand{{"docker", "pull", "escomp/base:latest"}}, runner.commands)
}

func TestSessions_Terminate(t *testing.T) {
	runner := &recordingRunner{}
	sessions := NewSessions(runner, "docker", &testLogger{})

	require.NoError(t, sessions.Terminate(context.Background(), "build_docs_foo"))

	assert.Equal(t, []domain.BuildCommand{{"docker", "kill", "build_docs_foo"}}, runner.commands)
}

func TestSessions_TerminateError(t *testing.T) {
	runner := &recordingRunner{err: errors.New("no such container")}
	sessions := NewSessions(runner, "docker", &testLogger{})

	err := sessions.Terminate(context.Background(), "build_docs_foo")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such container")
}
