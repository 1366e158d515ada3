// Package kubescape wraps the external kubescape CLI. The binary is invoked
// through a small Client interface so tests can substitute canned JSON
// reports without spawning a process.
package kubescape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/k8sec/kubegate/internal/logger"
)

// Error types for the kubescape package
var (
	// ErrToolUnavailable means the scanner binary could not be located
	ErrToolUnavailable = fmt.Errorf("kubescape CLI not found; install it and ensure it is on PATH")
	// ErrInvalidOutput means the scanner produced empty or non-JSON output
	ErrInvalidOutput = fmt.Errorf("kubescape output is not valid JSON")
)

// Options configures how the scanner binary is invoked
type Options struct {
	// Binary is the name or path of the kubescape executable
	Binary string
	// Framework selects the control framework (e.g. NSA, MITRE)
	Framework string
	// ControlsConfig is an optional controls-config file path; when set it
	// takes precedence over Framework
	ControlsConfig string
	// Timeout bounds a single scan invocation; zero means no limit
	Timeout time.Duration
}

// DefaultOptions returns a new Options with default values
func DefaultOptions() *Options {
	return &Options{
		Binary:    "kubescape",
		Framework: "NSA",
		Timeout:   2 * time.Minute,
	}
}

// Client runs a policy scan over the given manifest paths. A non-zero exit
// code is not an error by itself: the scanner signals findings through its
// exit code while still emitting a usable JSON report on stdout.
type Client interface {
	Scan(ctx context.Context, paths []string) (exitCode int, stdout []byte, err error)
}

// ExecClient implements Client by executing the kubescape binary
type ExecClient struct {
	opts *Options
}

// NewExecClient creates an ExecClient with the given options
func NewExecClient(opts *Options) *ExecClient {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Binary == "" {
		opts.Binary = "kubescape"
	}
	return &ExecClient{opts: opts}
}

// Scan invokes `kubescape scan` over paths with JSON output
func (c *ExecClient) Scan(ctx context.Context, paths []string) (int, []byte, error) {
	bin, err := exec.LookPath(c.opts.Binary)
	if err != nil {
		return 0, nil, fmt.Errorf("%w (looked for %q)", ErrToolUnavailable, c.opts.Binary)
	}

	args := []string{"scan"}
	if c.opts.ControlsConfig != "" {
		args = append(args, "--controls-config", c.opts.ControlsConfig)
	} else {
		args = append(args, "framework", c.opts.Framework)
	}
	args = append(args, paths...)
	args = append(args, "--format", "json")

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	logger.Debug().Strs("args", args).Msg("running kubescape")

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return 0, stdout.Bytes(), nil
	}

	// Findings are signaled via the exit code; keep the JSON body
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		logger.Debug().Int("exit_code", exitErr.ExitCode()).Msg("kubescape exited non-zero")
		return exitErr.ExitCode(), stdout.Bytes(), nil
	}

	return 0, nil, fmt.Errorf("running kubescape: %w (stderr: %s)", runErr, stderr.String())
}
