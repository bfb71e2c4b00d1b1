// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs conversion engines shipped as container images,
// detecting whichever of docker or podman is operational on the host.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Runtime executes container images with stdin/stdout piping.
type Runtime interface {
	// Name returns the runtime binary name.
	Name() string

	// HasImage reports whether the image is present locally; the error
	// describes what the check found.
	HasImage(ctx context.Context, image string) error

	// Run executes the image once, piping stdin through to stdout.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// commander abstracts process execution so detection and runs are testable
// without a container daemon.
type commander interface {
	LookPath(bin string) (string, error)
	Quiet(ctx context.Context, bin string, args ...string) error
	Piped(ctx context.Context, bin string, args []string, stdin io.Reader, stdout io.Writer) error
}

type execCommander struct{}

func (execCommander) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

func (execCommander) Quiet(ctx context.Context, bin string, args ...string) error {
	return exec.CommandContext(ctx, bin, args...).Run()
}

func (execCommander) Piped(ctx context.Context, bin string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// engine describes one supported runtime binary. Docker and podman differ
// only in the subcommand that checks image presence.
type engine struct {
	bin       string
	imageArgs []string
}

var engines = []engine{
	{bin: "docker", imageArgs: []string{"image", "inspect"}},
	{bin: "podman", imageArgs: []string{"image", "exists"}},
}

type runtime struct {
	engine
	cmds commander
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) HasImage(ctx context.Context, image string) error {
	args := append(append([]string{}, r.imageArgs...), image)
	if err := r.cmds.Quiet(ctx, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not present in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	if err := r.cmds.Piped(ctx, r.bin, []string{"run", "--rm", "-i", image}, stdin, stdout); err != nil {
		return fmt.Errorf("running %s image %s: %w", r.bin, image, err)
	}
	return nil
}

// Detect returns the first operational runtime, preferring docker.
func Detect(ctx context.Context) (Runtime, error) {
	return detect(ctx, execCommander{})
}

func detect(ctx context.Context, cmds commander) (Runtime, error) {
	var tried []string
	for _, e := range engines {
		tried = append(tried, e.bin)
		if _, err := cmds.LookPath(e.bin); err != nil {
			continue
		}
		if cmds.Quiet(ctx, e.bin, "info") != nil {
			continue
		}
		return &runtime{engine: e, cmds: cmds}, nil
	}
	return nil, fmt.Errorf("no container runtime available (tried %v)", tried)
}
