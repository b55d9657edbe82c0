package usecases

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// Literal command components. These are part of the command-line contract
// with make and the container runtime.
const (
	MakeProgram      = "make"
	DockerProgram    = "docker"
	ContainerShell   = "/bin/bash"
	sphinxOptsStrict = "SPHINXOPTS=-W --keep-going"
)

// HomeDirFunc returns the current user's home directory.
type HomeDirFunc func() (string, error)

// CommandBuilder constructs plain and container-isolated build commands.
type CommandBuilder struct {
	container domain.ContainerConfig
	homeDir   HomeDirFunc
	logger    Logger
}

// NewCommandBuilder creates a CommandBuilder. homeDir is only consulted with
// the home mount strategy.
func NewCommandBuilder(cfg domain.ContainerConfig, homeDir HomeDirFunc, log Logger) *CommandBuilder {
	return &CommandBuilder{
		container: cfg,
		homeDir:   homeDir,
		logger:    log,
	}
}

// Build returns the command line for req. Without a session name this is the
// make invocation itself; with one, make runs inside a container.
func (b *CommandBuilder) Build(ctx context.Context, req domain.CommandRequest) (domain.BuildCommand, error) {
	if !req.Isolated() {
		return makeCommand(req.BuildDir, req.Make)
	}

	plan, err := b.Plan(req.BuildDir, req.RunFromDir)
	if err != nil {
		return nil, err
	}

	inner, err := makeCommand(plan.BuildDir, req.Make)
	if err != nil {
		return nil, err
	}

	b.logger.Debug(ctx, "computed container plan", map[string]interface{}{
		"session":     req.SessionName,
		"mount_point": plan.MountPoint,
		"workdir":     plan.Workdir,
		"build_dir":   plan.BuildDir,
	})

	cmd := domain.BuildCommand{
		DockerProgram, "run",
		"--name", req.SessionName,
		"--volume", plan.MountPoint + ":" + plan.Root,
		"--workdir", plan.Workdir,
	}
	if b.container.TTY {
		cmd = append(cmd, "-t")
	}
	cmd = append(cmd,
		"--rm",
		b.container.Image,
		ContainerShell, "-c", plan.Bridge+" && "+shellquote.Join(inner...),
	)
	return cmd, nil
}

// Plan computes the host to container path remapping for an isolated build
// launched from runFromDir. A relative buildDir is taken relative to runFromDir.
func (b *CommandBuilder) Plan(buildDir, runFromDir string) (*domain.ContainerPlan, error) {
	if !filepath.IsAbs(runFromDir) {
		return nil, fmt.Errorf("%w; got %s", domain.ErrRelativePath, runFromDir)
	}
	runFromDir = filepath.Clean(runFromDir)

	buildDirAbs := buildDir
	if !filepath.IsAbs(buildDirAbs) {
		buildDirAbs = filepath.Join(runFromDir, buildDir)
	}
	buildDirAbs = filepath.Clean(buildDirAbs)

	mountPoint, err := b.mountPoint(runFromDir, buildDirAbs)
	if err != nil {
		return nil, err
	}

	workdir, err := containerPath(runFromDir, mountPoint, b.container.Root, domain.ErrWorkdirOutsideMount)
	if err != nil {
		return nil, err
	}

	containerBuildDir, err := containerPath(buildDirAbs, mountPoint, b.container.Root, domain.ErrBuildDirOutsideMount)
	if err != nil {
		return nil, err
	}

	// With a common-ancestor mount the host path is kept; the bridge symlink
	// makes it valid inside the container.
	innerBuildDir := buildDirAbs
	if b.container.MountStrategy == domain.MountHome {
		innerBuildDir = containerBuildDir
	}

	return &domain.ContainerPlan{
		MountPoint: mountPoint,
		Root:       b.container.Root,
		Workdir:    workdir,
		BuildDir:   innerBuildDir,
		Bridge:     bridgeCommand(mountPoint, b.container.Root),
	}, nil
}

func (b *CommandBuilder) mountPoint(runFromDir, buildDirAbs string) (string, error) {
	if b.container.MountStrategy == domain.MountHome {
		home, err := b.homeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		if !filepath.IsAbs(home) {
			return "", fmt.Errorf("%w; got %s", domain.ErrRelativePath, home)
		}
		return filepath.Clean(home), nil
	}

	mount := commonAncestor(runFromDir, buildDirAbs)
	if mount == filepath.Dir(mount) {
		return "", domain.ErrMountPointIsRoot
	}
	return mount, nil
}

// makeCommand returns the make invocation for buildDir.
func makeCommand(buildDir string, params domain.MakeParams) (domain.BuildCommand, error) {
	cmd := domain.BuildCommand{MakeProgram}
	if params.WarningsAsErrors {
		cmd = append(cmd, sphinxOptsStrict)
	}
	cmd = append(cmd, "BUILDDIR="+buildDir)
	if params.Jobs > 0 {
		cmd = append(cmd, "-j", strconv.Itoa(params.Jobs))
	}
	if params.Target != "" {
		cmd = append(cmd, params.Target)
	}

	if strings.TrimSpace(params.ExtraArgs) != "" {
		extra, err := shellquote.Split(params.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("invalid build arguments %q: %w", params.ExtraArgs, err)
		}
		cmd = append(cmd, extra...)
	}

	return cmd, nil
}

// bridgeCommand links the host mount point to the container root so that host
// absolute paths under the mount point resolve inside the container.
func bridgeCommand(mountPoint, root string) string {
	parent := filepath.ToSlash(filepath.Dir(mountPoint))
	mount := filepath.ToSlash(mountPoint)
	return shellquote.Join("sudo", "mkdir", "-p", parent) +
		" && " + shellquote.Join("sudo", "ln", "-s", root, mount)
}

// containerPath maps an absolute host path under mountPoint to the equivalent
// path under root. Containment is decided lexically.
func containerPath(localPath, mountPoint, root string, errNotUnder error) (string, error) {
	if !filepath.IsAbs(localPath) {
		return "", fmt.Errorf("%w; got %s", domain.ErrRelativePath, localPath)
	}

	rel, err := filepath.Rel(mountPoint, localPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not under %s", errNotUnder, localPath, mountPoint)
	}

	// Container paths are always POSIX, whatever the host separator.
	return path.Join(root, filepath.ToSlash(rel)), nil
}

// commonAncestor returns the deepest directory containing both absolute paths.
func commonAncestor(a, b string) string {
	sep := string(filepath.Separator)
	volume := filepath.VolumeName(a)
	if volume != filepath.VolumeName(b) {
		return volume + sep
	}

	aParts := strings.Split(strings.TrimPrefix(a[len(volume):], sep), sep)
	bParts := strings.Split(strings.TrimPrefix(b[len(volume):], sep), sep)

	var common []string
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		if aParts[i] != bParts[i] || aParts[i] == "" {
			break
		}
		common = append(common, aParts[i])
	}

	return volume + sep + strings.Join(common, sep)
}
