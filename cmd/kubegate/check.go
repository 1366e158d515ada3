package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/k8sec/kubegate/internal/detector"
	"github.com/k8sec/kubegate/internal/formatter"
	"github.com/k8sec/kubegate/internal/kubescape"
	"github.com/k8sec/kubegate/internal/loader"
	"github.com/k8sec/kubegate/internal/staged"
	"github.com/k8sec/kubegate/internal/types"
	"github.com/spf13/cobra"
)

var (
	checkOutput           string
	checkIncludeUntracked bool
	checkNoPolicy         bool
	checkThreshold        string
	checkControls         []string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check staged Kubernetes manifests before committing",
	Long: `Check scans the YAML manifests staged for the next commit. It detects
containers running as root (explicitly via runAsUser: 0 or implicitly by
omission) and runs the kubescape policy scanner over the staged content.

Install it as a pre-commit hook:

  echo 'kubegate check' >> .git/hooks/pre-commit

Exit status is 0 when everything is clean, 1 when blocking issues were
found and 2 when required tooling is missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatter.ParseType(checkOutput)
		if err != nil {
			return err
		}

		threshold, err := types.ParseSeverity(firstNonEmpty(checkThreshold, cfg.Scanner.SeverityThreshold))
		if err != nil {
			return err
		}

		controls := checkControls
		if len(controls) == 0 {
			controls = cfg.Scanner.ControlFilter
		}

		lister := staged.NewGitLister(".", checkIncludeUntracked || cfg.Git.IncludeUntracked)

		var client kubescape.Client
		if !checkNoPolicy {
			client = kubescape.NewExecClient(&kubescape.Options{
				Binary:         cfg.Scanner.Binary,
				Framework:      cfg.Scanner.Framework,
				ControlsConfig: cfg.Scanner.ControlsConfig,
				Timeout:        cfg.Scanner.Timeout,
			})
		}

		result, err := runCheck(cmd.Context(), lister, client, checkOptions{
			Threshold: threshold,
			Controls:  controls,
			Format:    format,
		})
		if err != nil {
			return err
		}

		fmt.Print(result.OutputFormatted)
		if !result.Success {
			return errIssuesFound
		}
		return nil
	},
}

// checkLister is the slice of staged.GitLister the check needs; tests
// substitute a fake
type checkLister interface {
	StagedYAML() ([]string, error)
	Materialize(files []string) (*staged.Tree, error)
}

type checkOptions struct {
	Threshold types.Severity
	Controls  []string
	Format    formatter.Type
}

// runCheck is the pre-commit pipeline: list staged YAML, materialize staged
// content, detect root containers, run the policy scanner, merge and format.
// A nil client skips the policy scan.
func runCheck(ctx context.Context, lister checkLister, client kubescape.Client, opts checkOptions) (*types.Result, error) {
	files, err := lister.StagedYAML()
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		Source:    "staged",
		Timestamp: time.Now().Unix(),
	}

	if len(files) == 0 {
		result.Success = true
		result.OutputFormatted = "No staged YAML files to scan.\n"
		return result, nil
	}

	tree, err := lister.Materialize(files)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var findings []types.Finding
	resources := make(kubescape.ResourceMap)
	for _, f := range files {
		docs := loader.LoadFile(tree.Path(f))
		findings = append(findings, detector.Detect(f, docs)...)
		resources.AddDocuments(f, docs)
	}
	result.FilesScanned = len(files)

	if client != nil {
		exit, raw, err := client.Scan(ctx, tree.Paths())
		if err != nil {
			return nil, err
		}
		report, err := kubescape.ParseReport(raw)
		if err != nil {
			// A run whose report cannot be read fails safe
			return nil, fmt.Errorf("%w (scanner exit code %d)", err, exit)
		}

		policy := report.Filter(opts.Threshold, opts.Controls, resources)
		for i := range policy {
			// Resources the map couldn't place carry the scanner's temp
			// path; report them relative to the repository instead
			policy[i].File = strings.TrimPrefix(
				strings.TrimPrefix(policy[i].File, tree.Dir), string(os.PathSeparator))
		}
		findings = append(findings, policy...)
	}

	result.Findings = findings
	result.Success = len(findings) == 0

	f, err := formatter.NewFormatter(opts.Format)
	if err != nil {
		return nil, err
	}
	out, err := f.Format(*result)
	if err != nil {
		return nil, err
	}
	result.OutputFormatted = out

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	flags := checkCmd.Flags()
	flags.StringVarP(&checkOutput, "output", "o", "text", "output format (text, table, json, yaml)")
	flags.BoolVar(&checkIncludeUntracked, "include-untracked", false,
		"also check untracked YAML files")
	flags.BoolVar(&checkNoPolicy, "no-policy", false,
		"skip the kubescape policy scan and only run the root-container check")
	flags.StringVar(&checkThreshold, "severity-threshold", "",
		"lowest policy severity that blocks the commit (low, medium, high, critical)")
	flags.StringSliceVar(&checkControls, "controls", nil,
		"restrict blocking policy results to these control IDs (default: all)")
}
