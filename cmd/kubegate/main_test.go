package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/k8sec/kubegate/internal/kubescape"
	"github.com/k8sec/kubegate/internal/staged"
)

func TestMainExecute(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	main()
}

func TestServeCmd_PreRun(t *testing.T) {
	if err := serveCmd.Flags().Set("host", "1.1.1.1"); err != nil {
		t.Fatal(err)
	}
	if err := serveCmd.Flags().Set("port", "9999"); err != nil {
		t.Fatal(err)
	}
	if err := serveCmd.Flags().Set("timeout", "5s"); err != nil {
		t.Fatal(err)
	}
	if err := serveCmd.Flags().Set("log-level", "debug"); err != nil {
		t.Fatal(err)
	}
	serveCmd.PreRun(serveCmd, nil)
	if cfg.Server.Host != "1.1.1.1" || cfg.Server.Port != 9999 {
		t.Fatalf("flags not applied")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "clean", err: nil, want: 0},
		{name: "issues found", err: errIssuesFound, want: 1},
		{name: "generic failure", err: errors.New("boom"), want: 1},
		{name: "invalid scanner output", err: fmt.Errorf("wrap: %w", kubescape.ErrInvalidOutput), want: 1},
		{name: "scanner missing", err: fmt.Errorf("wrap: %w", kubescape.ErrToolUnavailable), want: 2},
		{name: "git missing", err: staged.ErrGitUnavailable, want: 2},
		{name: "not a repository", err: staged.ErrNotARepository, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
