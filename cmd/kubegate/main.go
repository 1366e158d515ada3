package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/k8sec/kubegate/internal/config"
	"github.com/k8sec/kubegate/internal/kubescape"
	"github.com/k8sec/kubegate/internal/logger"
	"github.com/k8sec/kubegate/internal/staged"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var cfg = &config.Config{}

// errIssuesFound signals that the scan completed and found blocking issues.
// The report has already been printed when it is returned.
var errIssuesFound = errors.New("security issues found")

var rootCmd = &cobra.Command{
	Use:   "kubegate",
	Short: "Kubegate - a pre-commit security gate for Kubernetes manifests",
	Long: `Kubegate scans Kubernetes YAML manifests for containers running as root
and runs the kubescape policy scanner over them, blocking the commit when
critical issues are found.`,
	SilenceErrors: true, // We'll handle error printing ourselves
	SilenceUsage:  true, // We'll handle usage printing ourselves
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		// Load configuration from file or environment variable
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		// flags override config due to highest precedence
		if debug {
			cfg.Debug = true
		}

		// Initialize logger
		logger.Init(cfg)

		// Print configuration source
		if configPath != "" || os.Getenv(config.KubegateConfigPathEnvVar) != "" {
			logger.Debug().Msgf("Using config file: %s", configPath)
		} else {
			logger.Debug().Msg("Using default configuration")
		}

		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: config.yml in current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging and additional debug information")

	// Add commands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCode maps an execution error to the process exit status: 0 clean,
// 1 findings or scan failure, 2 missing tooling or not a repository
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, kubescape.ErrToolUnavailable),
		errors.Is(err, staged.ErrGitUnavailable),
		errors.Is(err, staged.ErrNotARepository):
		return 2
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// The issue report has already been printed; anything else is an
		// operational error worth showing
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}
