package kubescape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/k8sec/kubegate/internal/types"
)

// Report is the JSON document the scanner writes to stdout
type Report struct {
	Resources []Resource `json:"resources"`
}

// Resource is one scanned Kubernetes object with its control results
type Resource struct {
	Kind     string          `json:"kind"`
	Name     string          `json:"name"`
	FilePath string          `json:"filePath,omitempty"`
	Results  []ControlResult `json:"results"`
}

// ControlResult is a single control evaluation against a resource
type ControlResult struct {
	ControlID   string `json:"controlID"`
	ControlName string `json:"controlName,omitempty"`
	Severity    string `json:"severity"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ParseReport decodes the scanner's stdout. Empty or non-JSON output is an
// ErrInvalidOutput: a run whose report cannot be read must fail, never pass.
func ParseReport(raw []byte) (*Report, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}

	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return &report, nil
}

// ResourceRef identifies a scanned resource by kind and name
type ResourceRef struct {
	Kind string
	Name string
}

// FileLine locates a resource in the original manifest files
type FileLine struct {
	File string
	Line int
}

// ResourceMap maps scanned resources back to the file and line they came
// from, so scanner results can be reported against the committed files
// rather than the temporary copies the scanner saw
type ResourceMap map[ResourceRef]FileLine

// AddDocuments records the location of every named document in docs
func (m ResourceMap) AddDocuments(file string, docs []types.Document) {
	for _, doc := range docs {
		if doc.ParseErr != nil || doc.Kind == "" || doc.Name == "" {
			continue
		}
		m[ResourceRef{Kind: doc.Kind, Name: doc.Name}] = FileLine{File: file, Line: doc.Line}
	}
}

// Filter converts the scanner results at or above threshold into findings.
// The control filter restricts results to specific control IDs; an empty
// filter or one containing "all" keeps every control. Results whose status
// is present and not "failed" are skipped.
func (r *Report) Filter(threshold types.Severity, controls []string, resources ResourceMap) []types.Finding {
	keep := controlSet(controls)

	var findings []types.Finding
	for _, res := range r.Resources {
		loc, located := resources[ResourceRef{Kind: res.Kind, Name: res.Name}]
		if !located {
			loc = FileLine{File: res.FilePath}
		}

		for _, result := range res.Results {
			if result.Status != "" && !strings.EqualFold(result.Status, "failed") {
				continue
			}

			severity, err := types.ParseSeverity(result.Severity)
			if err != nil || severity < threshold {
				continue
			}
			if keep != nil && !keep[result.ControlID] {
				continue
			}

			control := result.ControlName
			if control == "" {
				control = result.ControlID
			}
			message := result.Message
			if message == "" {
				message = fmt.Sprintf("%s policy issue in resource %q [%s]", severity, res.Name, control)
			}

			findings = append(findings, types.Finding{
				File:           loc.File,
				Line:           loc.Line,
				Resource:       res.Kind + "/" + res.Name,
				Control:        result.ControlID,
				Severity:       severity,
				Classification: types.PolicyViolation,
				Message:        message,
			})
		}
	}

	return findings
}

// controlSet returns nil when every control should be kept
func controlSet(controls []string) map[string]bool {
	if len(controls) == 0 {
		return nil
	}
	set := make(map[string]bool, len(controls))
	for _, c := range controls {
		if strings.EqualFold(c, "all") {
			return nil
		}
		set[c] = true
	}
	return set
}
