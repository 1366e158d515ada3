package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/k8sec/kubegate/internal/detector"
	"github.com/k8sec/kubegate/internal/formatter"
	"github.com/k8sec/kubegate/internal/kubescape"
	"github.com/k8sec/kubegate/internal/loader"
	"github.com/k8sec/kubegate/internal/resolver"
	"github.com/k8sec/kubegate/internal/types"
	"github.com/spf13/cobra"
)

var (
	scanOutput         string
	scanValues         string
	scanFollowSymlinks bool
	scanPolicy         bool
	scanThreshold      string
	scanControls       []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [source]",
	Short: "Scan Kubernetes manifests from a file, directory, or URL",
	Long: `Scan analyzes manifests outside the commit flow. The source can be a
local YAML file, a remote URL, or a directory; Helm charts and Kustomize
overlays are detected and rendered before analysis.

Examples:
  # Scan a local manifest
  kubegate scan deploy/web.yaml

  # Scan a remote manifest
  kubegate scan https://raw.githubusercontent.com/org/repo/main/deploy/web.yaml

  # Scan a directory of manifests
  kubegate scan ./deploy/

  # Scan a helm chart with a values file
  kubegate scan ./charts/web/ -f values-prod.yaml

  # Also run the kubescape policy scan
  kubegate scan ./deploy/ --policy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		format, err := formatter.ParseType(scanOutput)
		if err != nil {
			return err
		}

		threshold, err := types.ParseSeverity(firstNonEmpty(scanThreshold, cfg.Scanner.SeverityThreshold))
		if err != nil {
			return err
		}

		controls := scanControls
		if len(controls) == 0 {
			controls = cfg.Scanner.ControlFilter
		}

		var client kubescape.Client
		if scanPolicy {
			client = kubescape.NewExecClient(&kubescape.Options{
				Binary:         cfg.Scanner.Binary,
				Framework:      cfg.Scanner.Framework,
				ControlsConfig: cfg.Scanner.ControlsConfig,
				Timeout:        cfg.Scanner.Timeout,
			})
		}

		result, err := runScan(cmd.Context(), source, client, scanOptions{
			Threshold:      threshold,
			Controls:       controls,
			Format:         format,
			Values:         scanValues,
			FollowSymlinks: scanFollowSymlinks,
		})
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Print(result.OutputFormatted)
		if !result.Success {
			return errIssuesFound
		}
		return nil
	},
}

type scanOptions struct {
	Threshold      types.Severity
	Controls       []string
	Format         formatter.Type
	Values         string
	FollowSymlinks bool
}

// runScan resolves the source into raw YAML payloads, runs the detector over
// each and optionally the policy scanner over the source path
func runScan(ctx context.Context, source string, client kubescape.Client, opts scanOptions) (*types.Result, error) {
	res, err := resolver.ResolverFactory(source, &resolver.Options{
		FollowSymlinks: opts.FollowSymlinks,
		Values:         opts.Values,
	})
	if err != nil {
		return nil, err
	}

	payloads, meta, err := res.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	result := &types.Result{
		Source:       source,
		Timestamp:    time.Now().Unix(),
		FilesScanned: len(payloads),
	}

	var findings []types.Finding
	resources := make(kubescape.ResourceMap)
	for _, p := range payloads {
		docs := loader.Load(bytes.NewReader(p.Raw))
		findings = append(findings, detector.Detect(p.Name, docs)...)
		resources.AddDocuments(p.Name, docs)
	}

	// The policy scanner works on local paths; remote sources are
	// detector-only
	if client != nil && meta.Type != resolver.SourceTypeRemote {
		exit, raw, err := client.Scan(ctx, []string{source})
		if err != nil {
			return nil, err
		}
		report, err := kubescape.ParseReport(raw)
		if err != nil {
			return nil, fmt.Errorf("%w (scanner exit code %d)", err, exit)
		}
		findings = append(findings, report.Filter(opts.Threshold, opts.Controls, resources)...)
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

func init() {
	flags := scanCmd.Flags()
	flags.StringVarP(&scanOutput, "output", "o", "table", "output format (text, table, json, yaml)")
	flags.StringVarP(&scanValues, "values", "f", "", "path to a values.yaml file used for rendering a helm chart")
	flags.BoolVar(&scanFollowSymlinks, "follow-symlinks", false,
		"follow symbolic links during directory traversal")
	flags.BoolVar(&scanPolicy, "policy", false,
		"also run the kubescape policy scan over the source")
	flags.StringVar(&scanThreshold, "severity-threshold", "",
		"lowest policy severity reported (low, medium, high, critical)")
	flags.StringSliceVar(&scanControls, "controls", nil,
		"restrict policy results to these control IDs (default: all)")
}
